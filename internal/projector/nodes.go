// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"encoding/json"
	"fmt"
)

type rawNode struct {
	Models        *[]rawModel `json:"models"`
	SystemStats   Stats       `json:"system_stats"`
	InferStats    Stats       `json:"infer_stats"`
	WorkerStarted bool        `json:"worker_started"`
}

type rawModel struct {
	Option   *string `json:"option"`
	Selected bool    `json:"selected"`
}

// Nodes projects the node payload (nodeId -> node) into cards, one per node,
// in the server's key order.
//
// Every node must list its models, every model must name its option, and
// exactly one model per node must be selected. A node that breaks these
// rules still gets a card, with Err set and nothing selectable, so one
// unreachable node does not hide the others. Only a payload that is not an
// object of nodes fails as a whole.
func Nodes(payload []byte) ([]NodeCard, error) {
	cards := make([]NodeCard, 0)
	err := decodeObject(payload, func(nodeID string, raw json.RawMessage) error {
		card, err := projectNode(nodeID, raw)
		if err != nil {
			card = brokenNode(nodeID, raw, err)
		}
		cards = append(cards, card)
		return nil
	})
	if err != nil {
		if isMalformed(err) {
			return nil, err
		}
		return nil, malformed("nodes", "$", "expected an object of nodes", err)
	}
	return cards, nil
}

func projectNode(nodeID string, raw json.RawMessage) (NodeCard, error) {
	var node rawNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return NodeCard{}, malformed("nodes", nodeID, "invalid node", err)
	}
	if node.Models == nil {
		return NodeCard{}, malformed("nodes", nodeID+".models", "missing", nil)
	}

	card := NodeCard{
		NodeID:        nodeID,
		Models:        make([]ModelOption, 0, len(*node.Models)),
		SystemStats:   node.SystemStats,
		InferStats:    node.InferStats,
		WorkerStarted: node.WorkerStarted,
	}
	if card.SystemStats == nil {
		card.SystemStats = Stats{}
	}
	if card.InferStats == nil {
		card.InferStats = Stats{}
	}

	selected := 0
	for i, m := range *node.Models {
		if m.Option == nil {
			return NodeCard{}, malformed("nodes", fmt.Sprintf("%s.models[%d].option", nodeID, i), "missing", nil)
		}
		if m.Selected {
			selected++
		}
		card.Models = append(card.Models, ModelOption{Option: *m.Option, Selected: m.Selected})
	}
	if selected != 1 {
		return NodeCard{}, malformed("nodes", nodeID+".models",
			fmt.Sprintf("expected exactly one selected model, found %d", selected), nil)
	}
	return card, nil
}

// brokenNode builds the inert card for a node that failed projection. The
// option labels that decode are kept for display; none is selected.
func brokenNode(nodeID string, raw json.RawMessage, err error) NodeCard {
	card := NodeCard{
		NodeID:      nodeID,
		Models:      []ModelOption{},
		SystemStats: Stats{},
		InferStats:  Stats{},
		Err:         err,
	}
	var node struct {
		Models []rawModel `json:"models"`
	}
	if json.Unmarshal(raw, &node) != nil {
		return card
	}
	for _, m := range node.Models {
		if m.Option != nil {
			card.Models = append(card.Models, ModelOption{Option: *m.Option})
		}
	}
	return card
}
