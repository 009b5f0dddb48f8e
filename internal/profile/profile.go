// Package profile loads the persona's source material: a plaintext summary
// and the documents (resume, LinkedIn export, ...) that get ingested into
// the knowledge base at startup.
package profile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sgupta/personabot/pkg/logging"
)

const summaryFileName = "summary.txt"

var ingestibleExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
	".odt":  true,
}

type Profile struct {
	Summary   string
	Documents []string // absolute paths, ready to ingest
}

// Load reads the profile directory. A missing directory is not an error:
// the persona just runs without grounding documents.
func Load(dir string) (Profile, error) {
	logger := logging.NewLogger("Profile")

	var p Profile
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Profile directory not found, persona runs without documents", "dir", dir)
			return p, nil
		}
		return p, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if entry.Name() == summaryFileName {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("Could not read summary file", "error", err)
				continue
			}
			p.Summary = string(data)
			continue
		}

		if ingestibleExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			p.Documents = append(p.Documents, path)
		}
	}

	logger.Info("Profile loaded", "documents", len(p.Documents), "has summary", p.Summary != "")
	return p, nil
}
