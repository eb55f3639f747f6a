package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// versionWidth is the zero padding of sequential migration versions
const versionWidth = 6

const migrationUpTemplate = `-- {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const migrationDownTemplate = `-- {{.Name}} (rollback)
-- Created: {{.Timestamp}}

`

// MigrationFile is a freshly created up/down pair
type MigrationFile struct {
	Version     uint
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Migration is one up/down pair found in a migration source
type Migration struct {
	Version uint
	Name    string
	HasDown bool
}

// CreateMigration writes an empty up/down pair into dir, numbered one past
// the highest version already there.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionWidth, next, slug)
	mf := &MigrationFile{
		Version:     next,
		Name:        slug,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, migrationUpTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, migrationDownTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeTemplate(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	// O_EXCL so a concurrent create never clobbers an existing file
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// sanitizeName lowercases name and collapses runs of separators into one underscore
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the up migrations in fsys ordered by version.
// Files that do not follow the <version>_<name>.up.sql pattern are ignored.
func ListMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Migration{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	downs := make(map[uint]bool)
	byVersion := make(map[uint]Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, direction, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		switch direction {
		case "up":
			byVersion[version] = Migration{Version: version, Name: name}
		case "down":
			downs[version] = true
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for v, m := range byVersion {
		m.HasDown = downs[v]
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// AvailableVersions returns the versions of the up migrations in fsys
func AvailableVersions(fsys fs.FS) ([]uint, error) {
	migrations, err := ListMigrations(fsys)
	if err != nil {
		return nil, err
	}
	versions := make([]uint, len(migrations))
	for i, m := range migrations {
		versions[i] = m.Version
	}
	return versions, nil
}

func parseFileName(fileName string) (version uint, name, direction string, ok bool) {
	rest, found := strings.CutSuffix(fileName, ".sql")
	if !found {
		return 0, "", "", false
	}
	switch {
	case strings.HasSuffix(rest, ".up"):
		direction, rest = "up", strings.TrimSuffix(rest, ".up")
	case strings.HasSuffix(rest, ".down"):
		direction, rest = "down", strings.TrimSuffix(rest, ".down")
	default:
		return 0, "", "", false
	}
	num, name, found := strings.Cut(rest, "_")
	if !found {
		return 0, "", "", false
	}
	v, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, "", "", false
	}
	return uint(v), name, direction, true
}
