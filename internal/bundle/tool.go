package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"redust/internal/services"
	"redust/internal/texture"
)

// TextureFilterBilinear is the filter mode written for replaced textures.
const TextureFilterBilinear = 1

// ToolOpener delegates the container format to a helper executable with two
// subcommands:
//
//	<binary> list -- <bundle>                       JSON listing on stdout
//	<binary> apply --manifest <m> --output <o> -- <bundle>
type ToolOpener struct {
	Binary string
}

// NewToolOpener returns an opener for binary.
func NewToolOpener(binary string) *ToolOpener {
	return &ToolOpener{Binary: strings.TrimSpace(binary)}
}

type listing struct {
	Entries []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"entries"`
}

// Manifest is the replacement list handed to the helper's apply command.
type Manifest struct {
	Replacements []Replacement `json:"replacements"`
}

// Replacement is one staged entry. Kind is "bytes" or "image".
type Replacement struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	File       string `json:"file"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Format     string `json:"format,omitempty"`
	FilterMode int    `json:"filter_mode,omitempty"`
}

// Open lists the bundle through the helper.
func (o *ToolOpener) Open(ctx context.Context, path string) (Archive, error) {
	if o.Binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "bundle", "open", "", errors.New("no bundle tool configured"))
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("bundle open: empty path")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.Binary, "list", "--", path)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bundle", "list", path,
			fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())))
	}
	var parsed listing
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bundle", "parse listing", path, err)
	}
	entries := make(map[string]Entry, len(parsed.Entries))
	for _, e := range parsed.Entries {
		if e.Name == "" {
			continue
		}
		entries[e.Name] = Entry{Name: e.Name, Type: ParseEntryType(e.Type)}
	}
	return &toolArchive{binary: o.Binary, path: path, entries: entries}, nil
}

type toolArchive struct {
	binary   string
	path     string
	entries  map[string]Entry
	staging  string
	manifest Manifest
}

func (a *toolArchive) Path() string              { return a.path }
func (a *toolArchive) Entries() map[string]Entry { return a.entries }

func (a *toolArchive) stage(name string, data []byte) (string, error) {
	if a.staging == "" {
		dir, err := os.MkdirTemp("", "redust-bundle-*")
		if err != nil {
			return "", fmt.Errorf("create staging dir: %w", err)
		}
		a.staging = dir
	}
	file := filepath.Join(a.staging, strconv.Itoa(len(a.manifest.Replacements))+".bin")
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return file, nil
}

func (a *toolArchive) ReplaceBytes(name string, data []byte) error {
	if err := checkReplace(a.entries, name, TypeTextAsset); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	file, err := a.stage(name, data)
	if err != nil {
		return err
	}
	a.manifest.Replacements = append(a.manifest.Replacements, Replacement{Name: name, Kind: "bytes", File: file})
	return nil
}

func (a *toolArchive) ReplaceImage(name string, img *texture.Image) error {
	if err := checkReplace(a.entries, name, TypeTexture2D); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	file, err := a.stage(name, img.Pix)
	if err != nil {
		return err
	}
	a.manifest.Replacements = append(a.manifest.Replacements, Replacement{
		Name:       name,
		Kind:       "image",
		File:       file,
		Width:      img.Width,
		Height:     img.Height,
		Format:     img.Format,
		FilterMode: TextureFilterBilinear,
	})
	return nil
}

func (a *toolArchive) Save(ctx context.Context, w io.Writer) error {
	if a.staging == "" {
		dir, err := os.MkdirTemp("", "redust-bundle-*")
		if err != nil {
			return fmt.Errorf("create staging dir: %w", err)
		}
		a.staging = dir
	}
	manifestPath := filepath.Join(a.staging, "manifest.json")
	data, err := json.Marshal(a.manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	outPath := filepath.Join(a.staging, "bundle.out")
	cmd := exec.CommandContext(ctx, a.binary, "apply", "--manifest", manifestPath, "--output", outPath, "--", a.path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrExternalTool, "bundle", "apply", a.path,
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))))
	}
	out, err := os.Open(outPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "bundle", "apply", a.path, fmt.Errorf("helper wrote no output: %w", err))
	}
	defer out.Close()
	if _, err := io.Copy(w, out); err != nil {
		return fmt.Errorf("copy bundle output: %w", err)
	}
	return nil
}

func (a *toolArchive) Close() error {
	if a.staging == "" {
		return nil
	}
	err := os.RemoveAll(a.staging)
	a.staging = ""
	return err
}
