// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"encoding/json"
	"fmt"
)

type rawCatalog struct {
	PromptOptions *[]rawOption    `json:"prompt_options"`
	FullPrompts   json.RawMessage `json:"full_prompts"`
}

type rawOption struct {
	Name   *string `json:"name"`
	Prompt *string `json:"prompt"`
}

type rawPrompt struct {
	Name            string            `json:"name"`
	Variables       []json.RawMessage `json:"variables"`
	Param           map[string]any    `json:"param"`
	Allowed         *bool             `json:"allowed"`
	AllowedNodes    []string          `json:"allowed_nodes"`
	NotAllowedNodes []string          `json:"not_allowed_nodes"`
}

// Prompts projects the prompt catalog into the selector list and the full
// descriptor lookup.
//
// A variables schema arrives as a sequence of single-key objects
// ([{"name": default}, ...]) and is normalized into ordered Variable records.
func Prompts(payload []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, malformed("prompts", "$", "expected an object", err)
	}
	if raw.PromptOptions == nil {
		return nil, malformed("prompts", "prompt_options", "missing", nil)
	}
	if isNull(raw.FullPrompts) {
		return nil, malformed("prompts", "full_prompts", "missing", nil)
	}

	catalog := &Catalog{
		Options: make([]PromptOption, 0, len(*raw.PromptOptions)),
		Full:    make(map[string]PromptDescriptor),
	}
	names := make(map[string]string)
	for i, o := range *raw.PromptOptions {
		if o.Prompt == nil {
			return nil, malformed("prompts", fmt.Sprintf("prompt_options[%d].prompt", i), "missing", nil)
		}
		if o.Name == nil {
			return nil, malformed("prompts", fmt.Sprintf("prompt_options[%d].name", i), "missing", nil)
		}
		catalog.Options = append(catalog.Options, PromptOption{Key: *o.Prompt, Name: *o.Name})
		names[*o.Prompt] = *o.Name
	}

	err := decodeObject(raw.FullPrompts, func(key string, data json.RawMessage) error {
		desc, err := projectPrompt(key, data)
		if err != nil {
			return err
		}
		if name, ok := names[key]; ok {
			desc.Name = name
		}
		catalog.Full[key] = desc
		return nil
	})
	if err != nil {
		if isMalformed(err) {
			return nil, err
		}
		return nil, malformed("prompts", "full_prompts", "expected an object of prompts", err)
	}
	return catalog, nil
}

func projectPrompt(key string, data json.RawMessage) (PromptDescriptor, error) {
	var p rawPrompt
	if err := json.Unmarshal(data, &p); err != nil {
		return PromptDescriptor{}, malformed("prompts", "full_prompts."+key, "invalid prompt", err)
	}

	desc := PromptDescriptor{
		Key:             key,
		Name:            p.Name,
		Parameters:      p.Param,
		Allowed:         p.Allowed == nil || *p.Allowed,
		AllowedNodes:    p.AllowedNodes,
		NotAllowedNodes: p.NotAllowedNodes,
	}
	if desc.Name == "" {
		desc.Name = key
	}

	for i, entry := range p.Variables {
		field := fmt.Sprintf("full_prompts.%s.variables[%d]", key, i)
		var pairs []Variable
		err := decodeObject(entry, func(name string, value json.RawMessage) error {
			pairs = append(pairs, Variable{Name: name, Default: scalarText(value)})
			return nil
		})
		if err != nil {
			return PromptDescriptor{}, malformed("prompts", field, "expected a {name: default} object", err)
		}
		if len(pairs) != 1 {
			return PromptDescriptor{}, malformed("prompts", field,
				fmt.Sprintf("expected exactly one variable, found %d", len(pairs)), nil)
		}
		desc.Variables = append(desc.Variables, pairs[0])
	}
	return desc, nil
}
