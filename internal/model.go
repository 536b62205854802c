package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"

	"github.com/0naama/gifportal/internal/config"
	"github.com/0naama/gifportal/internal/portal"
	"github.com/0naama/gifportal/internal/wallet"
)

// Screen types
type Screen int

// ScreenModel is the interface that all screens must implement
type ScreenModel interface {
	Update(tea.Msg) (ScreenModel, tea.Cmd)
	View() string
}

const (
	ScreenConnect Screen = iota
	ScreenInitialize
	ScreenGallery
	ScreenModal
	ScreenLoading
	ScreenLogs
)

// Gateway is the remote account the model reads and writes.
type Gateway interface {
	InitializeAccount(ctx context.Context, user solana.PublicKey, signer portal.Signer) (portal.ItemList, error)
	SubmitItem(ctx context.Context, user solana.PublicKey, signer portal.Signer, value string) (portal.ItemList, error)
	FetchList(ctx context.Context) (portal.ItemList, error)
}

// Model
type Model struct {
	program *tea.Program

	// Configuration
	cfg         *config.Config
	logger      *slog.Logger
	debugBuffer *DebugBuffer

	msgHandlers map[reflect.Type]msgHandler

	// Screen state. The first element is always the screen selectScreen picks
	// for the session and list; overlays sit above it.
	screenHistory []Screen

	width  int
	height int

	// Collaborators
	wallet     wallet.Availability
	gateway    Gateway
	httpClient *http.Client

	// Session and remote list
	session *solana.PublicKey
	gifList portal.ItemList

	// In-flight remote call, cancelled from the loading screen
	callCtx    context.Context
	callCancel context.CancelFunc
	callID     uint64

	// Rendered thumbnails by link
	thumbnails map[string]string

	// Screens
	connectScreen    *ConnectScreen
	initializeScreen *InitializeScreen
	galleryScreen    *GalleryScreen
	modalScreen      *ModalScreen
	loadingScreen    *LoadingScreen
	logsScreen       *LogsScreen
}

// CurrentScreen returns the current screen
func (m *Model) CurrentScreen() Screen {
	if len(m.screenHistory) == 0 {
		return m.baseScreen()
	}
	return m.screenHistory[len(m.screenHistory)-1]
}

// PushScreen adds an overlay screen
func (m *Model) PushScreen(screen Screen) {
	m.screenHistory = append(m.screenHistory, screen)
}

// PopScreen removes the current overlay and returns the screen we're now on.
// The base screen is never popped.
func (m *Model) PopScreen() Screen {
	if len(m.screenHistory) <= 1 {
		m.screenHistory = []Screen{m.baseScreen()}
		return m.screenHistory[0]
	}
	m.screenHistory = m.screenHistory[:len(m.screenHistory)-1]
	return m.screenHistory[len(m.screenHistory)-1]
}

// syncBaseScreen re-selects the base screen after the session or list changed.
func (m *Model) syncBaseScreen() {
	base := m.baseScreen()
	if len(m.screenHistory) == 0 {
		m.screenHistory = []Screen{base}
		return
	}
	m.screenHistory[0] = base
}

func (m *Model) baseScreen() Screen {
	return selectScreen(m.session, m.gifList)
}

// selectScreen picks one of the three portal screens. An uninitialized list
// selects the initialize screen; a loaded list, even an empty one, selects
// the gallery.
func selectScreen(session *solana.PublicKey, list portal.ItemList) Screen {
	switch {
	case session == nil:
		return ScreenConnect
	case !list.IsLoaded():
		return ScreenInitialize
	default:
		return ScreenGallery
	}
}

// currentScreen returns the current screen as a ScreenModel interface
func (m *Model) currentScreen() ScreenModel {
	switch m.CurrentScreen() {
	case ScreenConnect:
		return m.connectScreen
	case ScreenInitialize:
		return m.initializeScreen
	case ScreenGallery:
		return m.galleryScreen
	case ScreenModal:
		return m.modalScreen
	case ScreenLoading:
		return m.loadingScreen
	case ScreenLogs:
		return m.logsScreen
	}
	return nil
}

func NewModel(cfg *config.Config, availability wallet.Availability, gateway Gateway, logger *slog.Logger, db *DebugBuffer) *Model {
	m := &Model{
		msgHandlers: make(map[reflect.Type]msgHandler),
		cfg:         cfg,
		logger:      logger,
		debugBuffer: db,
		wallet:      availability,
		gateway:     gateway,
		httpClient:  &http.Client{Timeout: thumbnailTimeout},
		gifList:     portal.Uninitialized(),
		thumbnails:  make(map[string]string),
	}
	m.screenHistory = []Screen{m.baseScreen()}

	m.connectScreen = NewConnectScreen(m)
	m.initializeScreen = NewInitializeScreen(m)
	m.galleryScreen = NewGalleryScreen(m)

	return m
}

func (m *Model) Init() tea.Cmd {
	m.registerHandler(tea.WindowSizeMsg{}, m.handleWindowResize)
	m.registerHandler(errorMsg{}, m.handleErrorMsg)
	m.registerHandler(walletMissingMsg{}, m.handleWalletMissingMsg)
	m.registerHandler(walletConnectedMsg{}, m.handleWalletConnectedMsg)
	m.registerHandler(gifListMsg{}, m.handleGifListMsg)
	m.registerHandler(remoteCallFailedMsg{}, m.handleRemoteCallFailedMsg)
	m.registerHandler(thumbnailMsg{}, m.handleThumbnailMsg)
	m.registerHandler(ConnectRequestedMsg{}, m.handleConnectRequestedMsg)
	m.registerHandler(InitializeRequestedMsg{}, m.handleInitializeRequestedMsg)
	m.registerHandler(GallerySubmitMsg{}, m.handleGallerySubmitMsg)
	m.registerHandler(ModalButtonClickedMsg{}, m.handleModalButtonClickedMsgHandler)
	m.registerHandler(ModalCancelledMsg{}, m.handleModalCancelledMsgHandler)
	m.registerHandler(LoadingCancelledMsg{}, m.handleLoadingCancelledMsgHandler)
	m.registerHandler(LogsCancelledMsg{}, m.handleLogsCancelledMsg)

	return m.checkExistingSession()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.logger.Debug("Update UI", "tea.Msg", fmt.Sprintf("%T", msg), "currentScreen", m.CurrentScreen())

	// Handle global keybindings
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+q" || keyMsg.String() == "ctrl+c" {
			m.cancelCall()
			return m, tea.Quit
		}
		if keyMsg.String() == "ctrl+l" && m.CurrentScreen() != ScreenLogs {
			m.logsScreen = NewLogsScreen(m.debugBuffer, m)
			m.PushScreen(ScreenLogs)
			return m, nil
		}
	}

	// The spinner keeps turning while another overlay covers it
	if tick, ok := msg.(spinner.TickMsg); ok && m.loadingScreen != nil && m.hasOverlay(ScreenLoading) {
		_, cmd := m.loadingScreen.Update(tick)
		return m, cmd
	}

	// Check if we have a registered handler for this message type
	msgType := reflect.TypeOf(msg)
	if handler, ok := m.msgHandlers[msgType]; ok {
		return handler(msg)
	}

	if screen := m.currentScreen(); screen != nil {
		_, cmd := screen.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) View() string {
	if screen := m.currentScreen(); screen != nil {
		return screen.View()
	}
	return ""
}

// signer returns the connected wallet, if any.
func (m *Model) signer() (wallet.Wallet, bool) {
	a, ok := m.wallet.(wallet.Available)
	if !ok || m.session == nil {
		return nil, false
	}
	return a.Wallet, true
}

// beginCall starts the context for a remote call and shows the loading
// screen over the current one. Results carry the returned id; results of
// an older call are dropped.
func (m *Model) beginCall(message string) (context.Context, uint64, tea.Cmd) {
	m.cancelCall()
	m.callID++
	m.callCtx, m.callCancel = context.WithCancel(context.Background())

	var cmd tea.Cmd
	m.loadingScreen, cmd = NewLoadingScreen(message, m)
	if !m.hasOverlay(ScreenLoading) {
		m.PushScreen(ScreenLoading)
	}
	return m.callCtx, m.callID, cmd
}

// endCall drops the loading overlay once call finished. It reports false
// for a stale call.
func (m *Model) endCall(call uint64) bool {
	if call != m.callID {
		return false
	}
	m.cancelCall()
	m.removeOverlay(ScreenLoading)
	return true
}

// removeOverlay drops screen from the stack wherever it sits, so an overlay
// opened above it (such as Logs) does not keep it alive.
func (m *Model) removeOverlay(screen Screen) {
	if len(m.screenHistory) <= 1 {
		return
	}
	kept := []Screen{m.screenHistory[0]}
	for _, s := range m.screenHistory[1:] {
		if s != screen {
			kept = append(kept, s)
		}
	}
	m.screenHistory = kept
}

func (m *Model) hasOverlay(screen Screen) bool {
	for i, s := range m.screenHistory {
		if i > 0 && s == screen {
			return true
		}
	}
	return false
}

func (m *Model) cancelCall() {
	if m.callCancel != nil {
		m.callCancel()
		m.callCancel = nil
	}
	m.callCtx = nil
}

func (m *Model) Start() error {
	m.program = tea.NewProgram(m, tea.WithAltScreen())
	_, err := m.program.Run()
	return err
}
