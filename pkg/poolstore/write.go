package poolstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
)

// SaveFunctionInput is the write path's input set (spec.md §4.4
// save_function): function hash, language code, normalized code, docstring,
// name-mapping, alias-mapping, optional comment, metadata.
type SaveFunctionInput struct {
	FunctionHash   string
	Language       string
	NormalizedCode string
	Docstring      string
	NameMapping    map[string]string
	NameOrder      []string
	AliasMapping   map[string]string
	Comment        string
	Metadata       poolobj.Metadata
}

// SaveFunction implements spec.md §4.4's write path. It returns the
// function hash (echoed back) and the mapping hash it computed.
func (s *Store) SaveFunction(in SaveFunctionInput) (functionHash, mappingHash string, err error) {
	fd, err := s.functionDir(in.FunctionHash)
	if err != nil {
		return "", "", err
	}

	objPath := filepath.Join(fd, "object.json")
	if _, statErr := os.Stat(objPath); os.IsNotExist(statErr) {
		obj := poolobj.NormalizedFunction{
			SchemaVersion:  poolobj.SchemaVersion,
			Hash:           in.FunctionHash,
			HashAlgorithm:  poolobj.AlgoSHA256,
			NormalizedCode: in.NormalizedCode,
			Metadata:       in.Metadata,
		}
		data, mErr := json.MarshalIndent(obj, "", "  ")
		if mErr != nil {
			return "", "", fmt.Errorf("poolstore: marshal object.json: %w", mErr)
		}
		if err := s.atomicWriteFile(fd, "object.json", data); err != nil {
			return "", "", err
		}
	} else if statErr != nil {
		return "", "", fmt.Errorf("poolstore: stat %s: %w", objPath, statErr)
	}
	// NormalizedFunction objects are immutable once created (spec.md §3): an
	// existing object.json is left untouched even if in.NormalizedCode
	// differs — by content-addressing, it never should.

	fields := poolhash.MappingFields{
		Docstring:    in.Docstring,
		NameMapping:  in.NameMapping,
		AliasMapping: in.AliasMapping,
		Comment:      in.Comment,
	}
	mappingHash = poolhash.Mapping(fields)

	md, err := s.mappingDir(in.FunctionHash, in.Language, mappingHash)
	if err != nil {
		return "", "", err
	}
	mappingPath := filepath.Join(md, "mapping.json")

	if existing, statErr := os.ReadFile(mappingPath); statErr == nil {
		var have poolobj.Mapping
		if err := json.Unmarshal(existing, &have); err != nil {
			return "", "", &CorruptionError{Path: mappingPath, Reason: "existing mapping.json does not parse"}
		}
		if poolhash.Mapping(poolhash.MappingFields{
			Docstring:    have.Docstring,
			NameMapping:  have.NameMapping,
			AliasMapping: have.AliasMapping,
			Comment:      have.Comment,
		}) != mappingHash {
			// The directory name is the content hash; a mismatch here means
			// the stored bytes no longer hash to the path they live at.
			return "", "", &CorruptionError{Path: mappingPath, Reason: "content does not hash to its own directory path"}
		}
		// Same hash, same content: deduplicated, nothing to write.
		return in.FunctionHash, mappingHash, nil
	} else if !os.IsNotExist(statErr) {
		return "", "", fmt.Errorf("poolstore: stat %s: %w", mappingPath, statErr)
	}

	mapping := poolobj.Mapping{
		Docstring:    in.Docstring,
		NameMapping:  in.NameMapping,
		AliasMapping: in.AliasMapping,
		Comment:      in.Comment,
		NameOrder:    in.NameOrder,
	}
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("poolstore: marshal mapping.json: %w", err)
	}
	if err := s.atomicWriteFile(md, "mapping.json", data); err != nil {
		return "", "", err
	}

	return in.FunctionHash, mappingHash, nil
}
