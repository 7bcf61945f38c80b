// Package jsp loads and persists small JSON-encoded metadata files, the way
// the rest of this repo's ambient config and registry bookkeeping do.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// LoadMeta decodes the JSON file at path into v. A missing file is not an
// error -- callers get compiled-in defaults left untouched in v.
func LoadMeta(path string, v any) (found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := jsoniter.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return true, nil
}

// SaveMeta persists v as indented JSON at path.
func SaveMeta(path string, v any) error {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", path, err)
	}
	return os.WriteFile(path, b, 0o644)
}
