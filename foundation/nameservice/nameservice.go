// Package nameservice reads a folder of node key files and creates a name
// service lookup for the node ids they belong to.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

const keyExtension = ".json"

// NameService maintains a map of node ids for name lookup.
type NameService struct {
	nodes map[string]string
}

// New constructs a name service with the key files found under root. A
// missing root yields an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		nodes: make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			if fileName == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || path.Ext(fileName) != keyExtension {
			return nil
		}

		keys, err := signature.LoadKeys(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		ns.nodes[keys.ID()] = strings.TrimSuffix(path.Base(fileName), keyExtension)

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified node id, or the id itself when
// the node is unknown.
func (ns *NameService) Lookup(id string) string {
	if ns == nil {
		return id
	}

	name, exists := ns.nodes[id]
	if !exists {
		return id
	}
	return name
}

// Copy returns a copy of the map of node ids and names.
func (ns *NameService) Copy() map[string]string {
	if ns == nil {
		return map[string]string{}
	}

	cpy := make(map[string]string, len(ns.nodes))
	for id, name := range ns.nodes {
		cpy[id] = name
	}
	return cpy
}
