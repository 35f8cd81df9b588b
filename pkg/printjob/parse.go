package printjob

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse parses a print job from a JSON byte slice
func Parse(data []byte) (*PrintInfo, error) {
	var info PrintInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse print job: %w", err)
	}

	if err := Validate(&info); err != nil {
		return nil, err
	}

	return &info, nil
}

// ParseFile parses a print job file from disk
func ParseFile(path string) (*PrintInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	return Parse(data)
}

// ToJSON converts a PrintInfo to JSON bytes
func (p *PrintInfo) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
