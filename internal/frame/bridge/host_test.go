package bridge

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
	"github.com/gokatarajesh/venice-quiz-frame/internal/hostsim"
	ws "github.com/gokatarajesh/venice-quiz-frame/pkg/http/ws"
)

func simContext(added bool) *ws.ContextPayload {
	return &ws.ContextPayload{
		User: ws.UserPayload{FID: 7, Username: "venetian"},
		Client: ws.ClientPayload{
			ClientFID:      9152,
			Added:          added,
			SafeAreaInsets: &ws.SafeAreaInsetsPayload{Top: 12, Bottom: 30, Left: 4, Right: 4},
			Capabilities:   []string{"actions.ready", "actions.addFrame"},
		},
	}
}

func startSim(t *testing.T, opts hostsim.Options) (*hostsim.Simulator, *Host) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	sim := hostsim.New(opts, logger)
	srv := httptest.NewServer(sim.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/frame"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	host, err := Dial(ctx, url, logger)
	require.NoError(t, err)
	t.Cleanup(host.Close)

	require.Eventually(t, func() bool { return sim.Hub().Len() == 1 }, time.Second, 5*time.Millisecond)
	return sim, host
}

func callCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestContextRoundTrip(t *testing.T) {
	_, host := startSim(t, hostsim.Options{Context: simContext(true)})

	got, err := host.Context(callCtx(t))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.User.FID)
	assert.True(t, got.Client.Added)
	require.NotNil(t, got.Client.SafeAreaInsets)
	assert.Equal(t, frame.SafeAreaInsets{Top: 12, Bottom: 30, Left: 4, Right: 4}, *got.Client.SafeAreaInsets)
	assert.Equal(t, []string{"actions.ready", "actions.addFrame"}, got.Client.Capabilities)
}

func TestNullContext(t *testing.T) {
	_, host := startSim(t, hostsim.Options{})

	got, err := host.Context(callCtx(t))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddFrameErrors(t *testing.T) {
	cases := []struct {
		outcome string
		kind    error
	}{
		{hostsim.OutcomeReject, frame.ErrRejectedByUser},
		{hostsim.OutcomeInvalid, frame.ErrInvalidDomainManifest},
	}
	for _, tc := range cases {
		t.Run(tc.outcome, func(t *testing.T) {
			_, host := startSim(t, hostsim.Options{Context: simContext(false), AddOutcome: tc.outcome})

			err := host.AddFrame(callCtx(t))
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	t.Run(hostsim.OutcomeFail, func(t *testing.T) {
		_, host := startSim(t, hostsim.Options{Context: simContext(false), AddOutcome: hostsim.OutcomeFail})

		err := host.AddFrame(callCtx(t))
		require.Error(t, err)
		assert.False(t, errors.Is(err, frame.ErrRejectedByUser))
		assert.False(t, errors.Is(err, frame.ErrInvalidDomainManifest))
	})
}

func TestAddFrameAcceptedEmitsFrameAdded(t *testing.T) {
	sim, host := startSim(t, hostsim.Options{
		Context:         simContext(false),
		AddOutcome:      hostsim.OutcomeAccept,
		NotificationURL: "https://notify.example/v1",
	})

	events := make(chan frame.Event, 1)
	unsubscribe, err := host.Subscribe(frame.EventFrameAdded, func(e frame.Event) { events <- e })
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, host.AddFrame(callCtx(t)))

	select {
	case e := <-events:
		require.NotNil(t, e.NotificationDetails)
		assert.Equal(t, "https://notify.example/v1", e.NotificationDetails.URL)
	case <-time.After(2 * time.Second):
		t.Fatal("frame_added not delivered")
	}
	assert.True(t, sim.Added())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	sim, host := startSim(t, hostsim.Options{Context: simContext(true)})

	var mu sync.Mutex
	count := 0
	unsubscribe, err := host.Subscribe(frame.EventPrimaryButtonClicked, func(frame.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, sim.Emit(ws.EventPayload{Event: ws.EventPrimaryButtonClicked}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, 5*time.Millisecond)

	unsubscribe()
	require.NoError(t, sim.Emit(ws.EventPayload{Event: ws.EventPrimaryButtonClicked}))
	// Round-trip a request so the second event has been read before checking.
	_, err = host.Context(callCtx(t))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestReadyAnnouncesProviders(t *testing.T) {
	sim, host := startSim(t, hostsim.Options{
		Context: simContext(true),
		Providers: []ws.ProviderInfo{
			{UUID: "p-1", Name: "MetaMask", RDNS: "io.metamask"},
			{UUID: "p-1", Name: "MetaMask", RDNS: "io.metamask"},
		},
	})

	require.NoError(t, host.Ready(callCtx(t), frame.ReadyOptions{}))
	require.Eventually(t, func() bool { return sim.Hub().ReadyCount() == 1 }, time.Second, 5*time.Millisecond)

	// Late watchers get the providers announced so far, once each.
	require.Eventually(t, func() bool {
		var mu sync.Mutex
		var got []frame.ProviderDetail
		unsubscribe, err := host.WatchProviders(func(d frame.ProviderDetail) {
			mu.Lock()
			got = append(got, d)
			mu.Unlock()
		})
		if err != nil {
			return false
		}
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0].RDNS == "io.metamask"
	}, time.Second, 10*time.Millisecond)
}

func TestCallFailsWhenBridgeCloses(t *testing.T) {
	_, host := startSim(t, hostsim.Options{Context: simContext(true)})
	host.Close()

	_, err := host.Context(callCtx(t))
	assert.Error(t, err)
}

func TestControllerOverBridge(t *testing.T) {
	sim, host := startSim(t, hostsim.Options{
		Context:    simContext(false),
		AddOutcome: hostsim.OutcomeAccept,
		Providers:  []ws.ProviderInfo{{UUID: "p-1", RDNS: "io.metamask"}},
	})

	c := frame.NewController(host, frame.Options{PromptAdd: true}, zerolog.New(io.Discard))
	c.Initialize(context.Background())
	<-c.Done()

	assert.True(t, c.Ready())
	assert.Eventually(t, c.Added, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return c.AddStatus() == frame.StatusAdded }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return sim.Hub().ReadyCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, sim.Emit(ws.EventPayload{Event: ws.EventFrameRemoved}))
	assert.Eventually(t, func() bool { return !c.Added() }, 2*time.Second, 5*time.Millisecond)

	c.Teardown()
	require.NoError(t, sim.Emit(ws.EventPayload{Event: ws.EventFrameAdded}))
	_, err := host.Context(callCtx(t))
	require.NoError(t, err)
	assert.False(t, c.Added())
}
