package sign

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/satriahrh/isyarat/domain/entities"
)

type catalogFile struct {
	Gestures []gestureRecord `yaml:"gestures"`
}

type gestureRecord struct {
	Key         string             `yaml:"key"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Pose        []entities.Point3D `yaml:"pose"`
	Fingers     []int              `yaml:"fingers"`
	DurationMs  int                `yaml:"duration_ms"`
}

// LoadCatalogFile reads a YAML gesture table from disk
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return ParseCatalog(f)
}

// ParseCatalog decodes a YAML gesture table. Entries keep file order,
// which becomes the catalog's enumeration order.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	entries := make([]Entry, 0, len(file.Gestures))
	for i, rec := range file.Gestures {
		if len(rec.Fingers) != entities.FingerCount {
			return nil, fmt.Errorf("gesture %d (%q): expected %d finger flags, got %d",
				i, rec.Key, entities.FingerCount, len(rec.Fingers))
		}
		var mask [entities.FingerCount]bool
		for j, v := range rec.Fingers {
			mask[j] = v != 0
		}
		entries = append(entries, Entry{
			Key: rec.Key,
			Gesture: entities.GestureDescriptor{
				Name:            rec.Name,
				Description:     rec.Description,
				PoseKeyframes:   rec.Pose,
				FingerExtension: mask,
				DurationMs:      rec.DurationMs,
			},
		})
	}

	return NewCatalog(entries)
}
