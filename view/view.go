package view

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/colegio/auth"
	"github.com/diewo77/colegio/i18n"
	"github.com/diewo77/colegio/internal/models"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
	assetManifest     map[string]string
	assetManifestOnce sync.Once
)

// partials are parsed next to every page that uses the layout, when present.
var partials = []string{
	filepath.Join("partials", "header.html"),
	filepath.Join("partials", "errors-alert.html"),
	filepath.Join("partials", "level-select.html"),
}

// layoutBase walks upward from a template path to find the directory that contains layout.html.
// If none is found, it returns the template's own directory.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		lp := filepath.Join(d, "layout.html")
		if fi, err := os.Stat(lp); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d {
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the template helpers bound to the request language.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.LangFrom(r.Context())
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"money": func(v any) string {
			f, _ := toFloat64(v)
			return fmt.Sprintf("%.2f", f)
		},
		"levelLabel": func(l models.EducationLevel) string { return i18n.T(lang, l.LabelCode()) },
		"levels":     models.EducationLevels,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"mul": func(a, b any) float64 {
			fa, oka := toFloat64(a)
			fb, okb := toFloat64(b)
			if !oka || !okb {
				return 0
			}
			return fa * fb
		},
		"add": func(a, b any) float64 {
			fa, oka := toFloat64(a)
			fb, okb := toFloat64(b)
			if !oka || !okb {
				return 0
			}
			return fa + fb
		},
		"year":  func() int { return time.Now().Year() },
		"asset": func(path string) string { return resolveAsset(path) },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join("static", rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// resolveAsset prefers a hashed filename from manifest.json then falls back to query param versioning.
func resolveAsset(rel string) string {
	if os.Getenv("DEV") == "1" {
		parseManifest()
	} else {
		assetManifestOnce.Do(parseManifest)
	}
	if h, ok := assetManifest[rel]; ok {
		return "/static/" + h
	}
	return versionedAsset(rel)
}

func parseManifest() {
	b, err := os.ReadFile(filepath.Join("static", "manifest.json"))
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	assetManifest = m
}

// SetBaseDir overrides the template base directory (useful for tests or custom setups).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

func parse(r *http.Request, name string) (*template.Template, error) {
	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err != nil {
		found := false
		for _, c := range []string{
			filepath.Join("templates", name),
			filepath.Join("../templates", name),
			filepath.Join("../../templates", name),
			filepath.Join("../../../templates", name),
		} {
			if fi, e2 := os.Stat(c); e2 == nil && !fi.IsDir() {
				mainPath = c
				found = true
				break
			}
		}
		if !found {
			return nil, err
		}
	}
	root := layoutBase(mainPath)
	layoutPath := filepath.Join(root, "layout.html")

	content, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(layoutPath)
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) || err != nil || fi.IsDir() {
		return template.New(filepath.Base(mainPath)).Funcs(Funcs(r)).ParseFiles(mainPath)
	}
	files := []string{layoutPath, mainPath}
	for _, p := range partials {
		full := filepath.Join(root, p)
		if pf, err := os.Stat(full); err == nil && !pf.IsDir() {
			files = append(files, full)
		}
	}
	return template.New("layout.html").Funcs(Funcs(r)).ParseFiles(files...)
}

// RenderStatus parses (or reuses) name wrapped in layout.html and writes it
// with the given status. Nothing is written if execution fails.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	if _, exists := data["Lang"]; !exists {
		data["Lang"] = i18n.LangFrom(r.Context())
	}

	devMode := os.Getenv("DEV") == "1"
	var t *template.Template
	if !devMode {
		tplCache.RLock()
		t = tplCache.m[name]
		tplCache.RUnlock()
	}
	if t == nil {
		parsed, err := parse(r, name)
		if err != nil {
			return err
		}
		t = parsed
		if !devMode {
			tplCache.Lock()
			tplCache.m[name] = t
			tplCache.Unlock()
		}
	}

	// Cached templates keep the funcs of the request that parsed them.
	clone, err := t.Clone()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := clone.Funcs(Funcs(r)).Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
