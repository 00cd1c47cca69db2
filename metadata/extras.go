package metadata

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeExtra decodes a caller-supplied extra block into the provided
// target struct. The target must be a pointer; yaml tags are honored.
// A missing key is not an error: the target simply stays zero-valued.
//
// Example:
//
//	var watchCfg autocommit.WatchConfig
//	err := md.DecodeExtra("watch", &watchCfg)
func (m *WorktreeMetadata) DecodeExtra(key string, target interface{}) error {
	block, ok := m.Extra[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(block); err != nil {
		return fmt.Errorf("failed to decode '%s' block: %w", key, err)
	}

	return nil
}
