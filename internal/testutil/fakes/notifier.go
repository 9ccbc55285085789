package fakes

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
)

// Notifier is a testify mock of external.Notifier
type Notifier struct {
	mock.Mock
}

// NewNotifier returns a notifier mock that fails the test on unexpected calls
func NewNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *Notifier {
	n := &Notifier{}
	n.Mock.Test(t)
	t.Cleanup(func() { n.AssertExpectations(t) })
	return n
}

// Notify records the call
func (n *Notifier) Notify(ctx context.Context, notification external.Notification) error {
	args := n.Called(ctx, notification)
	return args.Error(0)
}

// Profiles is a map-backed external.ProfileReader
type Profiles map[uint64]string

// DisplayName returns the stored name or the anonymous placeholder
func (p Profiles) DisplayName(_ context.Context, userID uint64) (string, error) {
	if name, ok := p[userID]; ok {
		return name, nil
	}
	return external.AnonymousName, nil
}
