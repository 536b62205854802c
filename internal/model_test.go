package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0naama/gifportal/internal/config"
	"github.com/0naama/gifportal/internal/portal"
	"github.com/0naama/gifportal/internal/wallet"
)

type fakeGateway struct {
	calls []string
	list  portal.ItemList
	err   error
}

func (g *fakeGateway) InitializeAccount(_ context.Context, _ solana.PublicKey, _ portal.Signer) (portal.ItemList, error) {
	g.calls = append(g.calls, "initialize")
	return g.list, g.err
}

func (g *fakeGateway) SubmitItem(_ context.Context, _ solana.PublicKey, _ portal.Signer, value string) (portal.ItemList, error) {
	g.calls = append(g.calls, "submit:"+value)
	return g.list, g.err
}

func (g *fakeGateway) FetchList(_ context.Context) (portal.ItemList, error) {
	g.calls = append(g.calls, "fetch")
	return g.list, g.err
}

type fakeWallet struct {
	key     solana.PrivateKey
	trusted bool
}

func (w *fakeWallet) Connect(_ context.Context, opts wallet.ConnectOptions) (solana.PublicKey, error) {
	if opts.OnlyIfTrusted && !w.trusted {
		return solana.PublicKey{}, wallet.ErrNotTrusted
	}
	w.trusted = true
	return w.key.PublicKey(), nil
}

func (w *fakeWallet) SignTransaction(_ context.Context, _ *solana.Transaction, _ ...solana.PrivateKey) error {
	return nil
}

func newFakeWallet(t *testing.T, trusted bool) *fakeWallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return &fakeWallet{key: key, trusted: trusted}
}

func newTestModel(t *testing.T, availability wallet.Availability, gw *fakeGateway) (*Model, tea.Cmd) {
	t.Helper()
	off := false
	cfg := &config.Config{Settings: config.Settings{
		Origin:           "gifportal",
		TwitterHandle:    "fairy",
		ThumbnailWidth:   16,
		RenderThumbnails: &off,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := NewModel(cfg, availability, gw, logger, &DebugBuffer{})
	initCmd := m.Init()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, initCmd
}

// run executes cmd and every command it batches, returning the resulting
// messages. Spinner ticks are dropped.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// send feeds msg to the model and returns the messages its commands produce.
func send(m *Model, msg tea.Msg) []tea.Msg {
	_, cmd := m.Update(msg)
	return run(cmd)
}

// only returns the single message in msgs, failing otherwise.
func only(t *testing.T, msgs []tea.Msg) tea.Msg {
	t.Helper()
	require.Len(t, msgs, 1)
	return msgs[0]
}

// connect runs the explicit connect flow through to the first list read.
func connect(t *testing.T, m *Model) {
	t.Helper()
	m.Update(ConnectRequestedMsg{})
	require.Equal(t, ScreenModal, m.CurrentScreen())
	require.Equal(t, ModalTypeApproveConnection, m.modalScreen.Type())

	connected := only(t, send(m, ModalButtonClickedMsg{ButtonClicked: "Connect", Type: ModalTypeApproveConnection}))
	require.IsType(t, walletConnectedMsg{}, connected)

	list := only(t, send(m, connected))
	require.IsType(t, gifListMsg{}, list)
	send(m, list)
}

func TestSelectScreen(t *testing.T) {
	pk := solana.NewWallet().PublicKey()

	tests := []struct {
		name    string
		session *solana.PublicKey
		list    portal.ItemList
		want    Screen
	}{
		{"no session", nil, portal.Uninitialized(), ScreenConnect},
		{"no session with list", nil, portal.Loaded([]portal.Item{{Link: "a"}}), ScreenConnect},
		{"uninitialized", &pk, portal.Uninitialized(), ScreenInitialize},
		{"empty list", &pk, portal.Loaded(nil), ScreenGallery},
		{"populated", &pk, portal.Loaded([]portal.Item{{Link: "a"}}), ScreenGallery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectScreen(tt.session, tt.list))
		})
	}
}

func TestInitWithoutWalletShowsBlockingNotice(t *testing.T) {
	gw := &fakeGateway{}
	m, initCmd := newTestModel(t, wallet.Unavailable{Reason: "no keygen file"}, gw)

	missing := only(t, run(initCmd))
	require.IsType(t, walletMissingMsg{}, missing)
	m.Update(missing)

	assert.Equal(t, ScreenModal, m.CurrentScreen())
	assert.Equal(t, ModalTypeWalletMissing, m.modalScreen.Type())
	assert.Nil(t, m.session)
	assert.Empty(t, gw.calls)

	send(m, ModalButtonClickedMsg{ButtonClicked: "OK", Type: ModalTypeWalletMissing})
	assert.Equal(t, ScreenConnect, m.CurrentScreen())
}

func TestInitUntrustedWalletStaysOnConnect(t *testing.T) {
	gw := &fakeGateway{}
	m, initCmd := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)

	assert.Empty(t, run(initCmd))
	assert.Equal(t, ScreenConnect, m.CurrentScreen())
	assert.Nil(t, m.session)
	assert.Empty(t, gw.calls)
}

func TestInitTrustedWalletConnectsAndFetchesOnce(t *testing.T) {
	w := newFakeWallet(t, true)
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, initCmd := newTestModel(t, wallet.Available{Wallet: w, Name: "test"}, gw)

	connected := only(t, run(initCmd))
	require.Equal(t, walletConnectedMsg{publicKey: w.key.PublicKey()}, connected)

	list := only(t, send(m, connected))
	assert.Equal(t, ScreenLoading, m.CurrentScreen())
	send(m, list)

	require.NotNil(t, m.session)
	assert.Equal(t, w.key.PublicKey(), *m.session)
	assert.Equal(t, []string{"fetch"}, gw.calls)
	assert.Equal(t, ScreenGallery, m.CurrentScreen())
}

func TestConnectWithoutWalletShowsNotice(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := newTestModel(t, wallet.Unavailable{Reason: "no keygen file"}, gw)

	m.Update(ConnectRequestedMsg{})

	assert.Equal(t, ScreenModal, m.CurrentScreen())
	assert.Equal(t, ModalTypeWalletMissing, m.modalScreen.Type())
	assert.Nil(t, m.session)
	assert.Empty(t, gw.calls)
}

func TestConnectDeclined(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)

	m.Update(ConnectRequestedMsg{})
	assert.Empty(t, send(m, ModalButtonClickedMsg{ButtonClicked: "Cancel", Type: ModalTypeApproveConnection}))

	assert.Equal(t, ScreenConnect, m.CurrentScreen())
	assert.Nil(t, m.session)
}

func TestFailedFetchShowsInitialize(t *testing.T) {
	gw := &fakeGateway{list: portal.Uninitialized(), err: errors.New("account does not exist")}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)

	connect(t, m)

	assert.Equal(t, ScreenInitialize, m.CurrentScreen())
	assert.False(t, m.gifList.IsLoaded())
}

func TestInitializeShowsGallery(t *testing.T) {
	gw := &fakeGateway{list: portal.Uninitialized()}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)
	require.Equal(t, ScreenInitialize, m.CurrentScreen())

	gw.list = portal.Loaded(nil)
	req := only(t, send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")}))
	require.IsType(t, InitializeRequestedMsg{}, req)
	send(m, only(t, send(m, req)))

	assert.Equal(t, []string{"fetch", "initialize"}, gw.calls)
	assert.Equal(t, ScreenGallery, m.CurrentScreen())
}

func TestEmptySubmitMakesNoCall(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)
	gw.calls = nil

	submit := only(t, send(m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, GallerySubmitMsg{Value: ""}, submit)

	_, cmd := m.Update(submit)
	assert.Nil(t, cmd)
	assert.Empty(t, gw.calls)
	assert.Equal(t, ScreenGallery, m.CurrentScreen())
}

func TestSubmitCallsGatewayOnce(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)
	gw.calls = nil

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("https://x.gif")})
	submit := only(t, send(m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, GallerySubmitMsg{Value: "https://x.gif"}, submit)

	gw.list = portal.Loaded([]portal.Item{{Link: "https://x.gif"}})
	send(m, only(t, send(m, submit)))

	assert.Equal(t, []string{"submit:https://x.gif"}, gw.calls)
	assert.Equal(t, 1, m.gifList.Len())
	assert.Equal(t, "https://x.gif", m.galleryScreen.input.Value())
}

func TestRemoteFailureLeavesState(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded([]portal.Item{{Link: "a"}})}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	gw.err = errors.New("program rejected")
	gw.list = portal.Uninitialized()
	failed := only(t, send(m, GallerySubmitMsg{Value: "b"}))
	require.IsType(t, remoteCallFailedMsg{}, failed)
	send(m, failed)

	assert.Equal(t, ScreenGallery, m.CurrentScreen())
	assert.Equal(t, 1, m.gifList.Len())
}

func TestStaleListIsDropped(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	_, first, _ := m.beginCall("first")
	_, second, _ := m.beginCall("second")
	require.NotEqual(t, first, second)

	send(m, gifListMsg{list: portal.Uninitialized(), call: first})
	assert.True(t, m.gifList.IsLoaded())
	assert.Equal(t, ScreenLoading, m.CurrentScreen())

	send(m, gifListMsg{list: portal.Loaded([]portal.Item{{Link: "a"}}), call: second})
	assert.Equal(t, 1, m.gifList.Len())
	assert.Equal(t, ScreenGallery, m.CurrentScreen())
}

func TestLoadingCancelStopsCall(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	ctx, call, _ := m.beginCall("waiting")
	require.Equal(t, ScreenLoading, m.CurrentScreen())

	send(m, only(t, send(m, tea.KeyMsg{Type: tea.KeyEsc})))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, ScreenGallery, m.CurrentScreen())

	send(m, gifListMsg{list: portal.Uninitialized(), call: call})
	assert.True(t, m.gifList.IsLoaded())
}

func TestGalleryRendersItemsInOrder(t *testing.T) {
	links := []string{"https://c.gif", "https://a.gif", "https://b.gif"}
	var items []portal.Item
	for _, l := range links {
		items = append(items, portal.Item{Link: l})
	}
	gw := &fakeGateway{list: portal.Loaded(items)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	grid := m.galleryScreen.renderGrid()
	last := -1
	for _, l := range links {
		i := strings.Index(grid, l)
		require.GreaterOrEqual(t, i, 0, l)
		assert.Greater(t, i, last, l)
		last = i
	}
}

func TestGalleryEmptyList(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	assert.Equal(t, ScreenGallery, m.CurrentScreen())
	assert.Contains(t, m.galleryScreen.renderGrid(), "No gifs yet")
}

func TestLogsScreenToggle(t *testing.T) {
	m, _ := newTestModel(t, wallet.Unavailable{}, &fakeGateway{})

	send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, ScreenLogs, m.CurrentScreen())

	send(m, only(t, send(m, tea.KeyMsg{Type: tea.KeyEsc})))
	assert.Equal(t, ScreenConnect, m.CurrentScreen())
}

func TestCallFinishingUnderLogsClearsLoading(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	_, call, _ := m.beginCall("waiting")
	send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, ScreenLogs, m.CurrentScreen())

	send(m, gifListMsg{list: portal.Loaded([]portal.Item{{Link: "a"}}), call: call})
	assert.Equal(t, ScreenLogs, m.CurrentScreen())

	send(m, only(t, send(m, tea.KeyMsg{Type: tea.KeyEsc})))
	assert.Equal(t, ScreenGallery, m.CurrentScreen())
	assert.Equal(t, []Screen{ScreenGallery}, m.screenHistory)
}

func TestCallStartedUnderLogsReusesLoading(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	m.beginCall("first")
	send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	_, call, _ := m.beginCall("second")
	assert.Equal(t, []Screen{ScreenGallery, ScreenLoading, ScreenLogs}, m.screenHistory)

	send(m, remoteCallFailedMsg{call: call})
	assert.Equal(t, []Screen{ScreenGallery, ScreenLogs}, m.screenHistory)
}

func TestErrorMsgShowsErrorModal(t *testing.T) {
	m, _ := newTestModel(t, wallet.Unavailable{}, &fakeGateway{})

	m.Update(errorMsg{text: "Unable to connect wallet"})

	assert.Equal(t, ScreenModal, m.CurrentScreen())
	assert.Equal(t, ModalTypeError, m.modalScreen.Type())
}

func TestGalleryAcceptsLongLinks(t *testing.T) {
	gw := &fakeGateway{list: portal.Loaded(nil)}
	m, _ := newTestModel(t, wallet.Available{Wallet: newFakeWallet(t, false), Name: "test"}, gw)
	connect(t, m)

	link := "https://media.example/" + strings.Repeat("g", 600) + ".gif"
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(link)})

	submit := only(t, send(m, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, GallerySubmitMsg{Value: link}, submit)
}
