// Package idl reads Anchor interface descriptions and encodes/decodes the
// instructions and accounts they describe.
package idl

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/gagliardetto/solana-go"
)

var ErrNotFound = errors.New("not found in idl")

// IDL is the subset of an Anchor interface description the client consumes.
type IDL struct {
	Version      string        `json:"version"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
	Accounts     []TypeDef     `json:"accounts"`
	Types        []TypeDef     `json:"types"`
	Metadata     Metadata      `json:"metadata"`
}

type Metadata struct {
	Address string `json:"address"`
}

type Instruction struct {
	Name     string           `json:"name"`
	Accounts []InstructionAcc `json:"accounts"`
	Args     []Field          `json:"args"`
}

type InstructionAcc struct {
	Name     string `json:"name"`
	IsMut    bool   `json:"isMut"`
	IsSigner bool   `json:"isSigner"`
}

type TypeDef struct {
	Name string      `json:"name"`
	Type TypeDefBody `json:"type"`
}

type TypeDefBody struct {
	Kind   string  `json:"kind"`
	Fields []Field `json:"fields"`
}

type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Type is either a primitive name ("u64", "string", "publicKey", ...) or one of
// the composite forms {"vec": T}, {"option": T}, {"defined": "Name"}.
type Type struct {
	Primitive string
	Vec       *Type
	Option    *Type
	Defined   string
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var prim string
	if err := json.Unmarshal(data, &prim); err == nil {
		t.Primitive = prim
		return nil
	}

	var composite struct {
		Vec     *Type  `json:"vec"`
		Option  *Type  `json:"option"`
		Defined string `json:"defined"`
	}
	if err := json.Unmarshal(data, &composite); err != nil {
		return fmt.Errorf("idl type %s: %w", string(data), err)
	}
	if composite.Vec == nil && composite.Option == nil && composite.Defined == "" {
		return fmt.Errorf("unsupported idl type %s", string(data))
	}
	t.Vec = composite.Vec
	t.Option = composite.Option
	t.Defined = composite.Defined
	return nil
}

func (t Type) String() string {
	switch {
	case t.Vec != nil:
		return "vec<" + t.Vec.String() + ">"
	case t.Option != nil:
		return "option<" + t.Option.String() + ">"
	case t.Defined != "":
		return t.Defined
	}
	return t.Primitive
}

// Load reads and parses the IDL file at path.
func Load(path string) (*IDL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*IDL, error) {
	var doc IDL
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse idl: %w", err)
	}
	return &doc, nil
}

// ProgramID returns the program address recorded in the IDL metadata.
func (d *IDL) ProgramID() (solana.PublicKey, error) {
	if d.Metadata.Address == "" {
		return solana.PublicKey{}, errors.New("idl metadata has no program address")
	}
	pk, err := solana.PublicKeyFromBase58(d.Metadata.Address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("idl program address: %w", err)
	}
	return pk, nil
}

// Instruction looks up an instruction by its camelCase or snake_case name.
func (d *IDL) Instruction(name string) (*Instruction, error) {
	want := SnakeCase(name)
	for i := range d.Instructions {
		if SnakeCase(d.Instructions[i].Name) == want {
			return &d.Instructions[i], nil
		}
	}
	return nil, fmt.Errorf("instruction %q: %w", name, ErrNotFound)
}

func (d *IDL) AccountDef(name string) (*TypeDef, error) {
	for i := range d.Accounts {
		if d.Accounts[i].Name == name {
			return &d.Accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", name, ErrNotFound)
}

func (d *IDL) TypeDef(name string) (*TypeDef, error) {
	for i := range d.Types {
		if d.Types[i].Name == name {
			return &d.Types[i], nil
		}
	}
	// Anchor lets account structs be referenced as defined types too.
	return d.AccountDef(name)
}

// Field returns the field with the given name, matching camelCase and snake_case.
func (b TypeDefBody) Field(name string) (Field, bool) {
	want := SnakeCase(name)
	for _, f := range b.Fields {
		if SnakeCase(f.Name) == want {
			return f, true
		}
	}
	return Field{}, false
}

// InstructionDiscriminator is the 8-byte prefix Anchor dispatches instructions on.
func InstructionDiscriminator(name string) [8]byte {
	return discriminator("global:" + SnakeCase(name))
}

// AccountDiscriminator is the 8-byte prefix Anchor writes at the start of account data.
func AccountDiscriminator(name string) [8]byte {
	return discriminator("account:" + name)
}

func discriminator(preimage string) [8]byte {
	sum := sha256.Sum256([]byte(preimage))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// SnakeCase converts "startStuffOff" to "start_stuff_off". Names already in
// snake_case are returned unchanged.
func SnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
