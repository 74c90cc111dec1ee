package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/realtime"
)

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) FetchUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *ResolverMock) FetchChat(ctx context.Context, threadID string, force bool) (*models.Chat, error) {
	args := m.Called(ctx, threadID, force)
	var chat *models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(*models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ResolverMock) ListPendingChats(ctx context.Context) ([]*models.Chat, error) {
	args := m.Called(ctx)
	var chats []*models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]*models.Chat)
	}
	return chats, args.Error(1)
}

var _ realtime.Resolver = (*ResolverMock)(nil)
