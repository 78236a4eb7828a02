package wallet_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaporlabs/vapor-tokens/chain/tokenhook"
	"github.com/vaporlabs/vapor-tokens/pkg/wallet"
)

func openTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestPutAndGetVaporAddress(t *testing.T) {
	w := openTestWallet(t)

	var addr, recipient [32]byte
	addr[0] = 1
	recipient[0] = 2

	rec := wallet.VaporAddressRecord{
		VaporAddr: addr,
		Recipient: recipient,
		Secret:    big.NewInt(123456789),
	}
	require.NoError(t, w.PutVaporAddress(rec))

	got, err := w.GetVaporAddress(addr)
	require.NoError(t, err)
	require.Equal(t, addr, got.VaporAddr)
	require.Equal(t, recipient, got.Recipient)
	require.Zero(t, got.Secret.Cmp(rec.Secret))
}

func TestListVaporAddresses(t *testing.T) {
	w := openTestWallet(t)

	for i := 0; i < 3; i++ {
		var addr [32]byte
		addr[0] = byte(i + 1)
		rec := wallet.VaporAddressRecord{VaporAddr: addr, Secret: big.NewInt(int64(i))}
		require.NoError(t, w.PutVaporAddress(rec))
	}

	all, err := w.ListVaporAddresses()
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestInsertTransferDetectsExisting(t *testing.T) {
	w := openTestWallet(t)

	var to [32]byte
	to[0] = 9

	existed, err := w.InsertTransfer(100, tokenhook.Transfer{To: to, Amount: 500})
	require.NoError(t, err)
	require.False(t, existed)

	existed, err = w.InsertTransfer(100, tokenhook.Transfer{To: to, Amount: 999})
	require.NoError(t, err)
	require.True(t, existed)
}

func TestListTransfersOrderedBySlot(t *testing.T) {
	w := openTestWallet(t)

	slots := []uint64{300, 100, 200}
	for _, slot := range slots {
		var to [32]byte
		to[0] = byte(slot)
		_, err := w.InsertTransfer(slot, tokenhook.Transfer{To: to, Amount: slot})
		require.NoError(t, err)
	}

	all, err := w.ListTransfers()
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].Slot, all[i].Slot)
	}
}
