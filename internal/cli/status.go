// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for herder.
//
// Command: status
// Short:   Show the serving nodes and the prompt catalog
// Aliases: s
//
// Examples:
//
//	herder status                 Show status
//	herder status --json          Status in JSON format
//
// Nodes and prompts are fetched concurrently; either failure fails the
// command.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/projector"
)

// StatusGateway fetches the payloads the status command reports.
type StatusGateway interface {
	Nodes(ctx context.Context) ([]byte, error)
	Prompts(ctx context.Context) ([]byte, error)
}

// FetchStatus fetches and projects nodes and prompts concurrently.
func FetchStatus(ctx context.Context, gw StatusGateway, server string) (*StatusData, error) {
	var (
		cards   []projector.NodeCard
		catalog *projector.Catalog
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := gw.Nodes(ctx)
		if err != nil {
			return err
		}
		cards, err = projector.Nodes(payload)
		return err
	})
	g.Go(func() error {
		payload, err := gw.Prompts(ctx)
		if err != nil {
			return err
		}
		catalog, err = projector.Prompts(payload)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &StatusData{
		Server:  server,
		Nodes:   make([]NodeStatus, 0, len(cards)),
		Prompts: make([]PromptStatus, 0, len(catalog.Options)),
	}
	for _, c := range cards {
		ns := NodeStatus{
			NodeID:        c.NodeID,
			Model:         c.SelectedModel(),
			WorkerStarted: c.WorkerStarted,
			SystemStats:   c.SystemStats,
			InferStats:    c.InferStats,
		}
		for _, m := range c.Models {
			ns.Models = append(ns.Models, m.Option)
		}
		if c.Err != nil {
			ns.Error = gateway.UserMessage(c.Err)
		}
		data.Nodes = append(data.Nodes, ns)
	}
	for _, o := range catalog.Options {
		d := catalog.Descriptor(o.Key)
		ps := PromptStatus{
			Key:          o.Key,
			Name:         o.Name,
			Allowed:      d.Allowed,
			AllowedNodes: d.AllowedNodes,
		}
		for _, v := range d.Variables {
			ps.Variables = append(ps.Variables, v.Name)
		}
		data.Prompts = append(data.Prompts, ps)
	}
	return data, nil
}

// HandleStatus runs the status command.
func HandleStatus(ctx context.Context, gw StatusGateway, server string, args Args, w io.Writer) error {
	data, err := FetchStatus(ctx, gw, server)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("status", data).Print(w)
	}
	printStatus(w, data)
	return nil
}

func printStatus(w io.Writer, data *StatusData) {
	fmt.Fprintln(w, RenderConditional(TitleStyle, "herder status"))
	fmt.Fprintln(w, RenderLabel("Server")+data.Server)

	fmt.Fprintln(w, RenderConditional(SectionStyle, fmt.Sprintf("Nodes (%d)", len(data.Nodes))))
	fmt.Fprintln(w, RenderSeparator())
	if len(data.Nodes) == 0 {
		fmt.Fprintln(w, RenderConditional(DimStyle, "no nodes reported"))
	}
	for _, n := range data.Nodes {
		if n.Error != "" {
			fmt.Fprintf(w, "%s%s\n", RenderLabel(n.NodeID), RenderConditional(ErrorStyle, "unavailable: "+n.Error))
			continue
		}
		model := n.Model
		if model == "" {
			model = RenderConditional(WarningStyle, "no model loaded")
		}
		worker := RenderConditional(WarningStyle, "workers stopped")
		if n.WorkerStarted {
			worker = RenderConditional(SuccessStyle, "workers running")
		}
		fmt.Fprintf(w, "%s%s  %s\n", RenderLabel(n.NodeID), model, worker)
		if len(n.Models) > 1 {
			fmt.Fprintf(w, "%s%s\n", RenderLabel(""), RenderConditional(DimStyle, "available: "+strings.Join(n.Models, ", ")))
		}
	}

	fmt.Fprintln(w, RenderConditional(SectionStyle, fmt.Sprintf("Prompts (%d)", len(data.Prompts))))
	fmt.Fprintln(w, RenderSeparator())
	for _, p := range data.Prompts {
		line := RenderLabel(p.Key) + p.Name
		if len(p.Variables) > 0 {
			line += RenderConditional(DimStyle, " ("+strings.Join(p.Variables, ", ")+")")
		}
		if !p.Allowed {
			line += " " + RenderConditional(ErrorStyle, "[disabled]")
		}
		fmt.Fprintln(w, line)
	}
}
