package internal

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0naama/gifportal/internal/thumbnail"
	"github.com/0naama/gifportal/internal/wallet"
)

const thumbnailTimeout = 20 * time.Second

// checkExistingSession connects silently if the wallet already trusts us.
// Failures are logged; only an absent wallet is reported to the user.
func (m *Model) checkExistingSession() tea.Cmd {
	availability := m.wallet
	logger := m.logger
	return func() tea.Msg {
		pk, err := wallet.CheckExistingSession(context.Background(), availability)
		switch {
		case err == nil:
			logger.Info("Connected with public key", "publicKey", pk)
			return walletConnectedMsg{publicKey: pk}
		case errors.Is(err, wallet.ErrWalletUnavailable):
			logger.Warn("Wallet not found", "err", err)
			return walletMissingMsg{reason: unavailableReason(availability)}
		case errors.Is(err, wallet.ErrNotTrusted):
			logger.Info("Wallet found but not yet trusted; waiting for explicit connect")
		default:
			logger.Error("Unable to check existing wallet session", "err", err)
		}
		return nil
	}
}

// requestConnection is the user-approved connect.
func (m *Model) requestConnection() tea.Cmd {
	availability := m.wallet
	logger := m.logger
	return func() tea.Msg {
		pk, err := wallet.RequestConnection(context.Background(), availability)
		if err != nil {
			if errors.Is(err, wallet.ErrWalletUnavailable) {
				return walletMissingMsg{reason: unavailableReason(availability)}
			}
			logger.Error("Unable to connect wallet", "err", err)
			return errorMsg{text: "Unable to connect wallet: " + err.Error()}
		}
		logger.Info("Connected with public key", "publicKey", pk)
		return walletConnectedMsg{publicKey: pk}
	}
}

func (m *Model) fetchList(ctx context.Context, call uint64) tea.Cmd {
	gateway := m.gateway
	logger := m.logger
	return func() tea.Msg {
		logger.Info("Fetching gif list")
		list, err := gateway.FetchList(ctx)
		if ctx.Err() != nil {
			logger.Warn("Fetch cancelled", "err", ctx.Err())
			return remoteCallFailedMsg{call: call}
		}
		if err != nil {
			logger.Error("Unable to fetch gif list", "err", err)
		}
		return gifListMsg{list: list, call: call}
	}
}

func (m *Model) initializeAccount(ctx context.Context, call uint64) tea.Cmd {
	signer, ok := m.signer()
	if !ok {
		m.logger.Error("Initialize requested without a connected wallet")
		return nil
	}
	user := *m.session
	gateway := m.gateway
	logger := m.logger
	return func() tea.Msg {
		list, err := gateway.InitializeAccount(ctx, user, signer)
		if err != nil {
			logger.Error("Unable to create gif account", "err", err)
			return remoteCallFailedMsg{call: call}
		}
		if ctx.Err() != nil {
			return remoteCallFailedMsg{call: call}
		}
		return gifListMsg{list: list, call: call}
	}
}

func (m *Model) submitItem(ctx context.Context, call uint64, value string) tea.Cmd {
	signer, ok := m.signer()
	if !ok {
		m.logger.Error("Submit requested without a connected wallet")
		return nil
	}
	user := *m.session
	gateway := m.gateway
	logger := m.logger
	return func() tea.Msg {
		list, err := gateway.SubmitItem(ctx, user, signer, value)
		if err != nil {
			logger.Error("Unable to send gif", "link", value, "err", err)
			return remoteCallFailedMsg{call: call}
		}
		if ctx.Err() != nil {
			return remoteCallFailedMsg{call: call}
		}
		return gifListMsg{list: list, call: call}
	}
}

// loadThumbnails fetches art for links not rendered yet.
func (m *Model) loadThumbnails() tea.Cmd {
	if !m.thumbnailsEnabled() {
		return nil
	}

	var cmds []tea.Cmd
	seen := make(map[string]bool)
	for _, item := range m.gifList.Items() {
		link := item.Link
		if _, done := m.thumbnails[link]; done || seen[link] {
			continue
		}
		seen[link] = true

		client := m.httpClient
		width := m.cfg.ThumbnailWidth
		cmds = append(cmds, func() tea.Msg {
			art, err := thumbnail.Fetch(context.Background(), client, link, width)
			return thumbnailMsg{link: link, art: art, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m *Model) thumbnailsEnabled() bool {
	return m.cfg.RenderThumbnails == nil || *m.cfg.RenderThumbnails
}

func unavailableReason(a wallet.Availability) string {
	if u, ok := a.(wallet.Unavailable); ok {
		return u.Reason
	}
	return ""
}
