package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"agentsync/internal/model"
	"agentsync/internal/vcs"
)

// Defect codes are short and machine-readable; the detail is free text.
const (
	CodeUnreadable     = "unreadable"
	CodeEncoding       = "not-utf8"
	CodeTooLarge       = "too-large"
	CodeFrontmatter    = "frontmatter-syntax"
	CodeFence          = "unbalanced-fence"
	CodeConflictMarker = "conflict-marker"
	CodeSecret         = "embedded-secret"
)

type secretPattern struct {
	name string
	re   *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"AWS access key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"private key block", regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`)},
	{"GitHub token", regexp.MustCompile(`(?:ghp|gho|ghu|ghs)_[A-Za-z0-9]{36}`)},
	{"Slack token", regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,}`)},
	{"credential assignment", regexp.MustCompile(`(?i)(?:password|passwd|secret|api[_-]?key)\s*[:=]\s*["']?[A-Za-z0-9+/_\-]{12,}`)},
}

type Result struct {
	IsValid bool
	Defects []model.ValidationDefect
}

// Validator scans agent files for defects that must never reach the shared
// history: broken encoding, oversized files, malformed frontmatter, leftover
// conflict markers and embedded secrets. It reads through an afero.Fs so
// tests can run against an in-memory filesystem.
type Validator struct {
	fs      afero.Fs
	maxSize int64
}

func New(fs afero.Fs, maxSize int64) *Validator {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Validator{fs: fs, maxSize: maxSize}
}

// Validate checks one file and reports every defect found, not just the
// first.
func (v *Validator) Validate(path string) Result {
	data, err := afero.ReadFile(v.fs, path)
	if err != nil {
		return Result{Defects: []model.ValidationDefect{{
			Code:   CodeUnreadable,
			Detail: err.Error(),
		}}}
	}

	var defects []model.ValidationDefect

	if v.maxSize > 0 && int64(len(data)) > v.maxSize {
		defects = append(defects, model.ValidationDefect{
			Code:   CodeTooLarge,
			Detail: fmt.Sprintf("file is %d bytes, limit is %d", len(data), v.maxSize),
		})
	}

	if !utf8.Valid(data) {
		defects = append(defects, model.ValidationDefect{
			Code:   CodeEncoding,
			Detail: "file is not valid UTF-8",
		})
		// Text checks below assume decodable content.
		return Result{Defects: defects}
	}

	content := string(data)

	if d := checkFrontmatter(content); d != nil {
		defects = append(defects, *d)
	}

	if d := checkFences(content); d != nil {
		defects = append(defects, *d)
	}

	if vcs.ContainsMarkers(content) {
		defects = append(defects, model.ValidationDefect{
			Code:   CodeConflictMarker,
			Detail: "file contains unresolved conflict markers",
		})
	}

	defects = append(defects, checkSecrets(content)...)

	return Result{IsValid: len(defects) == 0, Defects: defects}
}

// checkFrontmatter parses the leading YAML block when the file opens with a
// "---" line. Files without frontmatter pass untouched.
func checkFrontmatter(content string) *model.ValidationDefect {
	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return nil
	}

	rest := strings.TrimPrefix(content, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return &model.ValidationDefect{
			Code:   CodeFrontmatter,
			Detail: "frontmatter block is not terminated",
		}
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &doc); err != nil {
		return &model.ValidationDefect{
			Code:   CodeFrontmatter,
			Detail: fmt.Sprintf("invalid frontmatter: %v", err),
		}
	}

	return nil
}

func checkFences(content string) *model.ValidationDefect {
	fences := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fences++
		}
	}

	if fences%2 != 0 {
		return &model.ValidationDefect{
			Code:   CodeFence,
			Detail: "unbalanced code fence",
		}
	}

	return nil
}

func checkSecrets(content string) []model.ValidationDefect {
	var defects []model.ValidationDefect

	for _, p := range secretPatterns {
		if p.re.MatchString(content) {
			defects = append(defects, model.ValidationDefect{
				Code:   CodeSecret,
				Detail: fmt.Sprintf("possible %s detected", p.name),
			})
		}
	}

	return defects
}
