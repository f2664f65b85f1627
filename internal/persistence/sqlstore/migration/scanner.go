package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scanner reads migration files from a directory of an fs.FS.
type Scanner struct {
	fsys fs.FS
	dir  string
}

// NewScanner returns a Scanner rooted at dir inside fsys.
func NewScanner(fsys fs.FS, dir string) *Scanner {
	return &Scanner{fsys: fsys, dir: dir}
}

// Scan returns every migration in the directory ordered by numeric version.
// Non-SQL entries are ignored.
func (s *Scanner) Scan() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, newError("", s.dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m, err := s.parse(entry.Name())
		if err != nil {
			return nil, err
		}
		if other, ok := seen[m.Version]; ok {
			return nil, newError(m.Version, m.Path, "check duplicates",
				fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, other, entry.Name()))
		}
		seen[m.Version] = entry.Name()
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return versionNumber(migrations[i].Version) < versionNumber(migrations[j].Version)
	})
	return migrations, nil
}

// ValidateFileName checks the {version}_{description}.sql convention.
func ValidateFileName(name string) error {
	if !fileNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q does not match pattern {version}_{description}.sql", ErrInvalidMigrationFile, name)
	}
	return nil
}

func (s *Scanner) parse(name string) (Migration, error) {
	p := path.Join(s.dir, name)
	if err := ValidateFileName(name); err != nil {
		return Migration{}, newError("", p, "validate filename", err)
	}
	match := fileNamePattern.FindStringSubmatch(name)
	version, fallback := match[1], match[2]

	body, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return Migration{}, newError(version, p, "read file", err)
	}
	content := string(body)
	if len(SplitStatements(content)) == 0 {
		return Migration{}, newError(version, p, "validate content",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}
	if err := checkBalanced(content); err != nil {
		return Migration{}, newError(version, p, "validate content", err)
	}

	description := leadingComment(content)
	if description == "" {
		description = strings.ReplaceAll(fallback, "_", " ")
	}
	sum := sha256.Sum256(body)
	return Migration{
		Version:     version,
		Description: description,
		SQL:         content,
		Path:        p,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// SplitStatements breaks a migration body on semicolons, dropping comment-only lines.
func SplitStatements(content string) []string {
	var statements []string
	for _, chunk := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}

func checkBalanced(content string) error {
	depth := 0
	var quote rune
	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "--"); i >= 0 && quote == 0 {
			line = line[:i]
		}
		for _, r := range line {
			switch {
			case quote != 0:
				if r == quote {
					quote = 0
				}
			case r == '\'' || r == '"':
				quote = r
			case r == '(':
				depth++
			case r == ')':
				depth--
				if depth < 0 {
					return fmt.Errorf("%w: unmatched closing parenthesis", ErrInvalidMigrationFile)
				}
			}
		}
	}
	if quote != 0 {
		return fmt.Errorf("%w: unterminated string literal", ErrInvalidMigrationFile)
	}
	if depth != 0 {
		return fmt.Errorf("%w: unmatched opening parenthesis", ErrInvalidMigrationFile)
	}
	return nil
}

// leadingComment returns the first comment line of the file, if the file starts with one.
func leadingComment(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(line, "--"))
	}
	return ""
}

func versionNumber(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
