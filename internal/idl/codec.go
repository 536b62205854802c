package idl

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var ErrDiscriminatorMismatch = errors.New("account discriminator mismatch")

// EncodeInstruction returns the instruction data for name: the Anchor
// discriminator followed by the Borsh encoding of args, in IDL order.
func (d *IDL) EncodeInstruction(name string, args ...any) ([]byte, error) {
	ix, err := d.Instruction(name)
	if err != nil {
		return nil, err
	}
	if len(args) != len(ix.Args) {
		return nil, fmt.Errorf("instruction %s takes %d args, got %d", ix.Name, len(ix.Args), len(args))
	}

	buf := new(bytes.Buffer)
	disc := InstructionDiscriminator(ix.Name)
	buf.Write(disc[:])

	enc := bin.NewBorshEncoder(buf)
	for i, arg := range ix.Args {
		if err := d.encodeValue(enc, arg.Type, args[i]); err != nil {
			return nil, fmt.Errorf("arg %s: %w", arg.Name, err)
		}
	}
	return buf.Bytes(), nil
}

func (d *IDL) encodeValue(enc *bin.Encoder, t Type, v any) error {
	switch {
	case t.Option != nil:
		if v == nil {
			return enc.WriteUint8(0)
		}
		if err := enc.WriteUint8(1); err != nil {
			return err
		}
		return d.encodeValue(enc, *t.Option, v)
	case t.Vec != nil:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("want []any for %s, got %T", t, v)
		}
		if err := enc.WriteUint32(uint32(len(items)), bin.LE); err != nil {
			return err
		}
		for _, item := range items {
			if err := d.encodeValue(enc, *t.Vec, item); err != nil {
				return err
			}
		}
		return nil
	case t.Defined != "":
		return fmt.Errorf("encoding defined type %s is not supported", t.Defined)
	}

	switch t.Primitive {
	case "string":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil {
			return err
		}
		return enc.WriteBytes([]byte(s), false)
	case "bool":
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("want bool, got %T", v)
		}
		return enc.WriteBool(b)
	case "u8":
		n, ok := v.(uint8)
		if !ok {
			return fmt.Errorf("want uint8, got %T", v)
		}
		return enc.WriteUint8(n)
	case "u32":
		n, ok := v.(uint32)
		if !ok {
			return fmt.Errorf("want uint32, got %T", v)
		}
		return enc.WriteUint32(n, bin.LE)
	case "u64":
		n, ok := v.(uint64)
		if !ok {
			return fmt.Errorf("want uint64, got %T", v)
		}
		return enc.WriteUint64(n, bin.LE)
	case "i64":
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("want int64, got %T", v)
		}
		return enc.WriteInt64(n, bin.LE)
	case "publicKey", "pubkey":
		pk, ok := v.(solana.PublicKey)
		if !ok {
			return fmt.Errorf("want solana.PublicKey, got %T", v)
		}
		return enc.WriteBytes(pk[:], false)
	}
	return fmt.Errorf("unsupported type %s", t)
}

// DecodeAccount checks the Anchor discriminator of data against the account
// named name and decodes its fields. Structs decode to map[string]any keyed by
// IDL field name, vecs to []any, public keys to solana.PublicKey, strings to
// string, integers to their Go width, and absent options to nil.
func (d *IDL) DecodeAccount(name string, data []byte) (map[string]any, error) {
	def, err := d.AccountDef(name)
	if err != nil {
		return nil, err
	}
	want := AccountDiscriminator(def.Name)
	if len(data) < len(want) || !bytes.Equal(data[:len(want)], want[:]) {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrDiscriminatorMismatch)
	}

	dec := bin.NewBorshDecoder(data[len(want):])
	return d.decodeStruct(dec, def.Type)
}

func (d *IDL) decodeStruct(dec *bin.Decoder, body TypeDefBody) (map[string]any, error) {
	out := make(map[string]any, len(body.Fields))
	for _, f := range body.Fields {
		v, err := d.decodeValue(dec, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

func (d *IDL) decodeValue(dec *bin.Decoder, t Type) (any, error) {
	switch {
	case t.Option != nil:
		tag, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			return nil, nil
		}
		return d.decodeValue(dec, *t.Option)
	case t.Vec != nil:
		n, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, err
		}
		if int(n) > dec.Remaining() {
			return nil, fmt.Errorf("vec length %d exceeds remaining %d bytes", n, dec.Remaining())
		}
		items := make([]any, 0, n)
		for i := uint32(0); i < n; i++ {
			v, err := d.decodeValue(dec, *t.Vec)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			items = append(items, v)
		}
		return items, nil
	case t.Defined != "":
		def, err := d.TypeDef(t.Defined)
		if err != nil {
			return nil, err
		}
		return d.decodeStruct(dec, def.Type)
	}

	switch t.Primitive {
	case "string":
		n, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, err
		}
		if int(n) > dec.Remaining() {
			return nil, fmt.Errorf("string length %d exceeds remaining %d bytes", n, dec.Remaining())
		}
		b, err := dec.ReadNBytes(int(n))
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case "bool":
		return dec.ReadBool()
	case "u8":
		return dec.ReadUint8()
	case "u16":
		return dec.ReadUint16(bin.LE)
	case "u32":
		return dec.ReadUint32(bin.LE)
	case "u64":
		return dec.ReadUint64(bin.LE)
	case "i64":
		return dec.ReadInt64(bin.LE)
	case "publicKey", "pubkey":
		b, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, err
		}
		return solana.PublicKeyFromBytes(b), nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}
