// Package mocks provides mock implementations for testing the sign-in service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces
// the callback orchestrator depends on.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	users := mocks.NewMockUserDirectory(ctrl)
//	users.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
package mocks

// Generate mocks for the collaborator ports from internal/ports:
// UserDirectory, TokenIssuer, WebhookNotifier, SignInNotifier, Whitelist, Renderer
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/mmk-sso/internal/ports UserDirectory,TokenIssuer,WebhookNotifier,SignInNotifier,Whitelist,Renderer
