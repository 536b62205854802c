package idl

import (
	"crypto/sha256"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *IDL {
	t.Helper()
	doc, err := Load(filepath.Join("testdata", "gifportal.json"))
	require.NoError(t, err)
	return doc
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "start_stuff_off", SnakeCase("startStuffOff"))
	assert.Equal(t, "add_gif", SnakeCase("addGif"))
	assert.Equal(t, "add_gif", SnakeCase("add_gif"))
	assert.Equal(t, "base_account", SnakeCase("BaseAccount"))
}

func TestProgramID(t *testing.T) {
	doc := loadFixture(t)
	pk, err := doc.ProgramID()
	require.NoError(t, err)
	assert.Equal(t, "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", pk.String())

	_, err = (&IDL{}).ProgramID()
	assert.Error(t, err)
}

func TestInstructionLookup(t *testing.T) {
	doc := loadFixture(t)

	ix, err := doc.Instruction("start_stuff_off")
	require.NoError(t, err)
	require.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.False(t, ix.Accounts[2].IsMut)

	_, err = doc.Instruction("removeGif")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscriminators(t *testing.T) {
	sum := sha256.Sum256([]byte("global:add_gif"))
	got := InstructionDiscriminator("addGif")
	assert.Equal(t, sum[:8], got[:])

	sum = sha256.Sum256([]byte("account:BaseAccount"))
	got = AccountDiscriminator("BaseAccount")
	assert.Equal(t, sum[:8], got[:])
}

func TestEncodeInstruction(t *testing.T) {
	doc := loadFixture(t)

	data, err := doc.EncodeInstruction("addGif", "https://x.gif")
	require.NoError(t, err)

	disc := InstructionDiscriminator("addGif")
	require.Len(t, data, 8+4+len("https://x.gif"))
	assert.Equal(t, disc[:], data[:8])
	assert.Equal(t, uint32(len("https://x.gif")), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, "https://x.gif", string(data[12:]))

	data, err = doc.EncodeInstruction("startStuffOff")
	require.NoError(t, err)
	assert.Len(t, data, 8)

	_, err = doc.EncodeInstruction("addGif")
	assert.Error(t, err, "missing arg")

	_, err = doc.EncodeInstruction("addGif", 42)
	assert.Error(t, err, "wrong arg type")
}

func encodeBaseAccount(links []string, user solana.PublicKey) []byte {
	disc := AccountDiscriminator("BaseAccount")
	out := append([]byte{}, disc[:]...)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(links)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(links)))
	for _, l := range links {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(l)))
		out = append(out, l...)
		out = append(out, user[:]...)
	}
	return out
}

func TestDecodeAccount(t *testing.T) {
	doc := loadFixture(t)
	user := solana.NewWallet().PublicKey()

	fields, err := doc.DecodeAccount("BaseAccount", encodeBaseAccount([]string{"a.gif", "b.gif"}, user))
	require.NoError(t, err)

	assert.Equal(t, uint64(2), fields["totalGifs"])
	list, ok := fields["gifList"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)

	first := list[0].(map[string]any)
	assert.Equal(t, "a.gif", first["gifLink"])
	assert.Equal(t, user, first["userAddress"])
	assert.Equal(t, "b.gif", list[1].(map[string]any)["gifLink"])
}

func TestDecodeAccountRejectsForeignData(t *testing.T) {
	doc := loadFixture(t)

	_, err := doc.DecodeAccount("BaseAccount", []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrDiscriminatorMismatch)

	data := encodeBaseAccount(nil, solana.PublicKey{})
	data[0] ^= 0xff
	_, err = doc.DecodeAccount("BaseAccount", data)
	assert.ErrorIs(t, err, ErrDiscriminatorMismatch)
}

func TestDecodeAccountTruncated(t *testing.T) {
	doc := loadFixture(t)
	data := encodeBaseAccount([]string{"a.gif"}, solana.PublicKey{})

	_, err := doc.DecodeAccount("BaseAccount", data[:len(data)-10])
	assert.Error(t, err)
}

func TestTypeUnmarshal(t *testing.T) {
	doc, err := Parse([]byte(`{"types":[{"name":"X","type":{"kind":"struct","fields":[{"name":"a","type":{"option":{"vec":"u8"}}}]}}]}`))
	require.NoError(t, err)

	def, err := doc.TypeDef("X")
	require.NoError(t, err)
	f, ok := def.Type.Field("a")
	require.True(t, ok)
	assert.Equal(t, "option<vec<u8>>", f.Type.String())

	_, err = Parse([]byte(`{"types":[{"name":"X","type":{"kind":"struct","fields":[{"name":"a","type":{"tuple":[]}}]}}]}`))
	assert.Error(t, err)
}
