package internal

import (
	"reflect"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0naama/gifportal/internal/wallet"
)

type msgHandler = func(msg tea.Msg) (tea.Model, tea.Cmd)

// registerHandler registers a message handler for the given message type.
// The msgType parameter should be a zero-value instance of the message type.
func (m *Model) registerHandler(msgType tea.Msg, handler msgHandler) {
	t := reflect.TypeOf(msgType)
	m.msgHandlers[t] = handler
}

func (m *Model) handleWindowResize(msg tea.Msg) (tea.Model, tea.Cmd) {
	windowMsg := msg.(tea.WindowSizeMsg)
	m.width = windowMsg.Width
	m.height = windowMsg.Height
	m.resizeAllScreens(windowMsg.Width, windowMsg.Height)
	return m, nil
}

func (m *Model) resizeAllScreens(w, h int) {
	if m.connectScreen != nil {
		m.connectScreen.SetSize(w, h)
	}
	if m.initializeScreen != nil {
		m.initializeScreen.SetSize(w, h)
	}
	if m.galleryScreen != nil {
		m.galleryScreen.SetSize(w, h)
	}
	if m.modalScreen != nil {
		m.modalScreen.SetSize(w, h)
	}
	if m.loadingScreen != nil {
		m.loadingScreen.SetSize(w, h)
	}
	if m.logsScreen != nil {
		m.logsScreen.SetSize(w, h)
	}
}

func (m *Model) handleErrorMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	errorMessage := msg.(errorMsg)
	m.logger.Error("Received error message", "text", errorMessage.text)
	// Pop loading screen if it's active, so error modal replaces it properly
	if m.CurrentScreen() == ScreenLoading {
		m.PopScreen()
	}
	m.modalScreen = NewModalScreen(ModalTypeError, "Error", errorMessage.text, []string{"Close"}, m)
	m.PushScreen(ScreenModal)
	return m, m.modalScreen.Init()
}

// handleWalletMissingMsg shows the blocking notice for an absent wallet.
func (m *Model) handleWalletMissingMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	missing := msg.(walletMissingMsg)

	content := "Solana wallet not found. Create one with `solana-keygen new` or set WalletPath in the config file."
	if missing.reason != "" {
		content += "\n\n(" + missing.reason + ")"
	}
	m.modalScreen = NewModalScreen(ModalTypeWalletMissing, "Wallet not found", content, []string{"OK"}, m)
	m.PushScreen(ScreenModal)
	return m, m.modalScreen.Init()
}

func (m *Model) handleWalletConnectedMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	connected := msg.(walletConnectedMsg)
	pk := connected.publicKey
	m.session = &pk
	m.syncBaseScreen()

	ctx, call, spin := m.beginCall("Fetching gif list...")
	return m, tea.Batch(spin, m.fetchList(ctx, call))
}

func (m *Model) handleGifListMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	listMessage := msg.(gifListMsg)
	if !m.endCall(listMessage.call) {
		m.logger.Debug("Dropping stale gif list", "call", listMessage.call)
		return m, nil
	}

	m.gifList = listMessage.list
	m.logger.Debug("Gif list", "loaded", m.gifList.IsLoaded(), "count", m.gifList.Len())
	m.galleryScreen.SetItems(m.gifList.Items())
	m.syncBaseScreen()

	return m, m.loadThumbnails()
}

func (m *Model) handleRemoteCallFailedMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	failed := msg.(remoteCallFailedMsg)
	m.endCall(failed.call)
	return m, nil
}

func (m *Model) handleThumbnailMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	thumb := msg.(thumbnailMsg)
	if thumb.err != nil {
		m.logger.Warn("Unable to render gif", "link", thumb.link, "err", thumb.err)
		m.thumbnails[thumb.link] = ""
	} else {
		m.thumbnails[thumb.link] = thumb.art
	}
	m.galleryScreen.Refresh()
	return m, nil
}

// handleConnectRequestedMsg asks the user to approve the connection, or
// shows the missing wallet notice.
func (m *Model) handleConnectRequestedMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a := m.wallet.(type) {
	case wallet.Available:
		content := "Allow " + m.cfg.Origin + " to view your wallet address and request transaction approvals?\n\nWallet: " + a.Name
		m.modalScreen = NewModalScreen(ModalTypeApproveConnection, "Connect to Wallet", content, []string{"Cancel", "Connect"}, m)
		m.PushScreen(ScreenModal)
		return m, m.modalScreen.Init()
	default:
		return m.handleWalletMissingMsg(walletMissingMsg{reason: unavailableReason(m.wallet)})
	}
}

func (m *Model) handleInitializeRequestedMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := m.signer(); !ok {
		m.logger.Error("Initialize requested without a connected wallet")
		return m, nil
	}
	m.logger.Info("Creating gif account")
	ctx, call, spin := m.beginCall("Creating gif account...")
	return m, tea.Batch(spin, m.initializeAccount(ctx, call))
}

// handleGallerySubmitMsg sends the typed link. An empty link is dropped
// without a remote call. The input keeps its text after a submit.
func (m *Model) handleGallerySubmitMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := msg.(GallerySubmitMsg)
	if submit.Value == "" {
		m.logger.Info("No gif link given")
		return m, nil
	}
	if _, ok := m.signer(); !ok {
		m.logger.Error("Submit requested without a connected wallet")
		return m, nil
	}

	m.logger.Info("Gif link", "link", submit.Value)
	ctx, call, spin := m.beginCall("Sending gif...")
	return m, tea.Batch(spin, m.submitItem(ctx, call, submit.Value))
}

// handleModalCancelledMsgHandler closes the modal (ESC pressed)
func (m *Model) handleModalCancelledMsgHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.PopScreen()
	return m, nil
}

// handleModalButtonClickedMsgHandler wraps handleModalButtonClickedMsg for the msgHandler signature
func (m *Model) handleModalButtonClickedMsgHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, m.handleModalButtonClickedMsg(msg.(ModalButtonClickedMsg))
}

// handleModalButtonClickedMsg handles modal button clicks
func (m *Model) handleModalButtonClickedMsg(msg ModalButtonClickedMsg) tea.Cmd {
	m.PopScreen()

	switch msg.Type {
	case ModalTypeApproveConnection:
		if msg.ButtonClicked == "Connect" {
			return m.requestConnection()
		}
		m.logger.Info("Wallet connection declined")
	}
	return nil
}

// handleLoadingCancelledMsgHandler abandons the in-flight remote call.
func (m *Model) handleLoadingCancelledMsgHandler(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.logger.Info("Remote call cancelled by user")
	m.cancelCall()
	// whatever the abandoned call returns is stale now
	m.callID++
	m.PopScreen()
	return m, nil
}

func (m *Model) handleLogsCancelledMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.PopScreen()
	return m, nil
}
