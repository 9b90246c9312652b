// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"
)

type healthResult struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Time    string `json:"time,omitempty"`
	BaseURL string `json:"base_url"`
	Stub    bool   `json:"stub"`
	Latency string `json:"latency"`
}

// HandleHealth queries the ask service health endpoint.
func HandleHealth(ctx context.Context, a *App) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Backend.Timeout())
	defer cancel()

	return OutputJSON(a.Out, a.JSON, "health", func() (interface{}, error) {
		start := time.Now()
		h, err := a.Service.Health(ctx)
		if err != nil {
			return nil, err
		}

		res := healthResult{
			OK:      h.OK(),
			Status:  h.Status,
			Time:    h.Time,
			BaseURL: a.Config.Backend.BaseURL,
			Stub:    a.Config.Backend.Stub,
			Latency: time.Since(start).Round(time.Millisecond).String(),
		}
		if !a.JSON {
			fmt.Fprintf(a.Out, "%s %s %s %s\n",
				RenderStatus(res.OK),
				res.BaseURL,
				ValueStyle.Render(res.Status),
				DimStyle.Render(res.Latency))
		}
		if !res.OK {
			return res, NewCommandError("health", "check", "service reported status "+h.Status, nil)
		}
		return res, nil
	})
}
