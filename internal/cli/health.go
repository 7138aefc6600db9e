// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// health.go - health command handler.
//
// Unlike status, health is a probe: an unreachable or unhealthy backend is
// a command failure, so scripts can gate on the exit code.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const healthTimeout = 10 * time.Second

// HandleHealthCommand queries the backend health endpoint and reports it.
func HandleHealthCommand(args Args) error {
	env, err := buildEnv(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	health, err := env.client.Health(ctx)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("health", err).Print()
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("health", health).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Backend Health"))
	fmt.Println(RenderSeparator())

	state := "fail"
	if health.OK() {
		state = "ok"
	}
	fmt.Printf("%s %s\n", LabelStyle.Render("Backend"), ValueStyle.Render(env.cfg.Agent.BaseURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("Variant"), ValueStyle.Render(env.variant))
	if health.Status != "" {
		fmt.Printf("%s %s %s\n", LabelStyle.Render("Status"),
			RenderStatus(state), DimStyle.Render(health.Status))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("Status"), RenderStatus(state))
	}
	if health.Service != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Service"), ValueStyle.Render(health.Service))
	}

	// The local agent reports its model inventory; the hosted one does not.
	if health.Model != "" {
		line := ValueStyle.Render(health.Model)
		if !health.ModelAvailable {
			line += "  " + WarningStyle.Render("[not pulled]")
		}
		fmt.Printf("%s %s\n", LabelStyle.Render("Model"), line)
	}
	if len(health.AvailableModels) > 0 {
		fmt.Printf("%s %s\n", LabelStyle.Render("Available"),
			DimStyle.Render(strings.Join(health.AvailableModels, ", ")))
	}
	if health.OllamaURL != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Ollama"), DimStyle.Render(health.OllamaURL))
	}
	if health.ChromaPath != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Chroma"), DimStyle.Render(health.ChromaPath))
	}
	if health.Error != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Error"), ErrorStyle.Render(health.Error))
	}
	fmt.Println()

	if !health.OK() {
		return fmt.Errorf("backend reports unhealthy: %s", health.Status)
	}
	return nil
}
