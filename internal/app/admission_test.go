package app

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/metrics"
	"github.com/dkeye/signalmaster/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testToken = strings.Repeat("k9", 25)

func cookie(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestGate_AdmitsGrantedClaim(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockAccessStore(ctrl)
	want := domain.Claim{Participant: "alice", Room: "standup", Token: testToken}
	store.EXPECT().HasAccess(gomock.Any(), want).Return(true, nil)

	g := &Gate{Store: store, Metrics: metrics.New()}
	claim, err := g.Admit(context.Background(), cookie("alice:standup:"+testToken))
	req.NoError(err)
	req.Equal(want, claim)
}

func TestGate_DeniedWhenNoGrant(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockAccessStore(ctrl)
	store.EXPECT().HasAccess(gomock.Any(), gomock.Any()).Return(false, nil)

	g := &Gate{Store: store}
	_, err := g.Admit(context.Background(), cookie("alice:standup:"+testToken))
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestGate_StoreFailureRefuses(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockAccessStore(ctrl)
	boom := errors.New("connection refused")
	store.EXPECT().HasAccess(gomock.Any(), gomock.Any()).Return(false, boom)

	g := &Gate{Store: store}
	_, err := g.Admit(context.Background(), cookie("alice:standup:"+testToken))
	require.ErrorIs(t, err, boom)
}

func TestGate_InvalidClaimNeverReachesStore(t *testing.T) {
	cases := map[string]string{
		"missing":         "",
		"garbage":         "not base64!",
		"bad participant": cookie("alice';--:standup:" + testToken),
		"short token":     cookie("alice:standup:abc"),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockAccessStore(ctrl)
			// no EXPECT: any call fails the test

			g := &Gate{Store: store}
			_, err := g.Admit(context.Background(), raw)
			require.Error(t, err)
		})
	}
}

func TestGate_PassesDeadlineToStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockAccessStore(ctrl)
	store.EXPECT().HasAccess(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.Claim) (bool, error) {
			_, ok := ctx.Deadline()
			require.True(t, ok)
			return true, nil
		})

	g := &Gate{Store: store}
	_, err := g.Admit(context.Background(), cookie("alice:standup:"+testToken))
	require.NoError(t, err)
}
