// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/jeranaias/chatterm/internal/model"

// =============================================================================
// REQUEST BODIES
// =============================================================================

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type renameChatRequest struct {
	ChatName string `json:"chat_name"`
}

type createThreadRequest struct {
	ChatID int `json:"chat_id"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// =============================================================================
// RESPONSE BODIES
// =============================================================================

// statusEnvelope is the common wrapper on every JSON response. The
// server reports success as status == "success"; anything else is an
// application failure and Message carries the reason.
type statusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e statusEnvelope) ok() bool {
	return e.Status == "success"
}

type loginResponse struct {
	statusEnvelope
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type verifyTokenResponse struct {
	Authenticated bool `json:"authenticated"`
}

type listChatsResponse struct {
	statusEnvelope
	Chats []model.Chat `json:"chats"`
}

type createChatResponse struct {
	statusEnvelope
	Chat model.Chat `json:"chat"`
}

type createThreadResponse struct {
	statusEnvelope
	ThreadSession model.ThreadSession `json:"thread_session"`
}

type messagesResponse struct {
	statusEnvelope
	Messages []model.Message `json:"messages"`
}

// LoginResult is what a successful login hands back to the caller:
// the bearer token plus the account it belongs to.
type LoginResult struct {
	Token string
	User  model.User
}
