package internal

import (
	"github.com/gagliardetto/solana-go"

	"github.com/0naama/gifportal/internal/portal"
)

// errorMsg is shown to the user in an error modal.
type errorMsg struct {
	text string
}

// walletMissingMsg is the blocking notice for an absent wallet.
type walletMissingMsg struct {
	reason string
}

type walletConnectedMsg struct {
	publicKey solana.PublicKey
}

// gifListMsg carries the list as read after a connect, an initialize or a
// submit.
type gifListMsg struct {
	list portal.ItemList
	call uint64
}

// remoteCallFailedMsg ends a remote call that failed. The failure has been
// logged; state is left as it was.
type remoteCallFailedMsg struct {
	call uint64
}

type thumbnailMsg struct {
	link string
	art  string
	err  error
}
