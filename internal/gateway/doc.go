// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the herder orchestrator API.
//
// Every call is bearer-token authenticated and returns either its result or
// an *Error classified as a transport failure, a server rejection (with the
// server's detail text when one was sent) or a malformed payload.
//
// # Usage
//
//	client := gateway.NewClient(&gateway.ClientConfig{
//	    BaseURL: "http://herder.local:8000",
//	    Token:   token,
//	})
//	resp, err := client.Infer(ctx, gateway.InferRequest{
//	    RawInput:  gateway.TextInput("Hello"),
//	    PromptKey: "llama_2_keep_it_short",
//	})
//	if err != nil {
//	    fmt.Println(gateway.UserMessage(err))
//	}
//
// List endpoints whose key order is significant (nodes, prompts, history)
// return the raw body; decoding and validation live in package projector.
package gateway
