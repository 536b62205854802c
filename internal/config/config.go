// Package config loads the client's settings and the static artifacts they
// point at. The result is built once at startup and not changed afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"

	"github.com/0naama/gifportal/internal/idl"
	"github.com/0naama/gifportal/internal/keypair"
)

// Settings is the on-disk YAML configuration.
type Settings struct {
	Cluster          string        `yaml:"Cluster"`
	Commitment       string        `yaml:"Commitment"`
	IDLPath          string        `yaml:"IDLPath"`
	KeypairPath      string        `yaml:"KeypairPath"`
	WalletPath       string        `yaml:"WalletPath"`
	TrustStorePath   string        `yaml:"TrustStorePath"`
	Origin           string        `yaml:"Origin"`
	RequestTimeout   time.Duration `yaml:"RequestTimeout"`
	TwitterHandle    string        `yaml:"TwitterHandle"`
	RenderThumbnails *bool         `yaml:"RenderThumbnails"`
	ThumbnailWidth   int           `yaml:"ThumbnailWidth"`
}

// Config is Settings resolved against the files and network it names.
type Config struct {
	Settings

	Endpoint   string
	Commitment rpc.CommitmentType
	IDL        *idl.IDL
	ProgramID  solana.PublicKey
	Account    solana.PrivateKey
}

var clusters = map[string]string{
	"devnet":       rpc.DevNet_RPC,
	"testnet":      rpc.TestNet_RPC,
	"mainnet-beta": rpc.MainNetBeta_RPC,
	"localnet":     rpc.LocalNet_RPC,
}

// Load reads the YAML file at path and resolves it. Relative paths inside
// the file are taken relative to the file's directory.
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fh.Close()
	}()

	var s Settings
	if err := yaml.NewDecoder(fh).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Resolve(s, filepath.Dir(path))
}

// Resolve applies defaults to s and loads the IDL and account keypair.
func Resolve(s Settings, baseDir string) (*Config, error) {
	s.applyDefaults()

	endpoint, err := endpointFor(s.Cluster)
	if err != nil {
		return nil, err
	}
	commitment, err := commitmentFor(s.Commitment)
	if err != nil {
		return nil, err
	}

	s.IDLPath = resolvePath(baseDir, s.IDLPath)
	s.KeypairPath = resolvePath(baseDir, s.KeypairPath)
	s.WalletPath = resolvePath(baseDir, s.WalletPath)
	s.TrustStorePath = resolvePath(baseDir, s.TrustStorePath)

	doc, err := idl.Load(s.IDLPath)
	if err != nil {
		return nil, fmt.Errorf("load idl: %w", err)
	}
	programID, err := doc.ProgramID()
	if err != nil {
		return nil, err
	}
	account, err := keypair.Load(s.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("load account keypair (run create-keypair once first): %w", err)
	}

	return &Config{
		Settings:   s,
		Endpoint:   endpoint,
		Commitment: commitment,
		IDL:        doc,
		ProgramID:  programID,
		Account:    account,
	}, nil
}

func (s *Settings) applyDefaults() {
	if s.Cluster == "" {
		s.Cluster = "devnet"
	}
	if s.Commitment == "" {
		s.Commitment = string(rpc.CommitmentProcessed)
	}
	if s.IDLPath == "" {
		s.IDLPath = "idl.json"
	}
	if s.KeypairPath == "" {
		s.KeypairPath = "keypair.json"
	}
	if s.WalletPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			s.WalletPath = filepath.Join(home, ".config", "solana", "id.json")
		}
	}
	if s.TrustStorePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			s.TrustStorePath = filepath.Join(dir, "gifportal", "trusted-origins.yaml")
		}
	}
	if s.Origin == "" {
		s.Origin = "gifportal"
	}
	if s.RenderThumbnails == nil {
		t := true
		s.RenderThumbnails = &t
	}
	if s.ThumbnailWidth <= 0 {
		s.ThumbnailWidth = 24
	}
}

func endpointFor(cluster string) (string, error) {
	if strings.HasPrefix(cluster, "http://") || strings.HasPrefix(cluster, "https://") {
		return cluster, nil
	}
	if ep, ok := clusters[cluster]; ok {
		return ep, nil
	}
	return "", fmt.Errorf("unknown cluster %q", cluster)
}

func commitmentFor(name string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(name); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	}
	return "", fmt.Errorf("unknown commitment %q", name)
}

func resolvePath(baseDir, p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
