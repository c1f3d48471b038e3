package browsercookies

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// browser lists where one browser keeps its cookie store. Firefox family
// browsers are found through profiles.ini; Chromium family ones have fixed
// candidate files.
type browser struct {
	name        string
	files       []string
	profilesIni []string
}

func chromiumFiles(profile string) []string {
	return []string{
		filepath.Join(profile, "Network", "Cookies"),
		filepath.Join(profile, "Cookies"),
	}
}

// knownBrowsers returns the browsers to scan in priority order for goos.
// getenv supplies APPDATA and LOCALAPPDATA on Windows.
func knownBrowsers(goos, home string, getenv func(string) string) []browser {
	switch goos {
	case "windows":
		roaming, local := getenv("APPDATA"), getenv("LOCALAPPDATA")
		return []browser{
			{name: "Firefox", profilesIni: []string{filepath.Join(roaming, "Mozilla", "Firefox", "profiles.ini")}},
			{name: "LibreWolf", profilesIni: []string{filepath.Join(roaming, "LibreWolf", "profiles.ini")}},
			{name: "Chrome", files: chromiumFiles(filepath.Join(local, "Google", "Chrome", "User Data", "Default"))},
			{name: "Chromium", files: chromiumFiles(filepath.Join(local, "Chromium", "User Data", "Default"))},
			{name: "Edge", files: chromiumFiles(filepath.Join(local, "Microsoft", "Edge", "User Data", "Default"))},
			{name: "Brave", files: chromiumFiles(filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data", "Default"))},
		}
	case "darwin":
		support := filepath.Join(home, "Library", "Application Support")
		return []browser{
			{name: "Firefox", profilesIni: []string{filepath.Join(support, "Firefox", "profiles.ini")}},
			{name: "LibreWolf", profilesIni: []string{filepath.Join(support, "librewolf", "profiles.ini")}},
			{name: "Chrome", files: chromiumFiles(filepath.Join(support, "Google", "Chrome", "Default"))},
			{name: "Chromium", files: chromiumFiles(filepath.Join(support, "Chromium", "Default"))},
			{name: "Edge", files: chromiumFiles(filepath.Join(support, "Microsoft Edge", "Default"))},
			{name: "Brave", files: chromiumFiles(filepath.Join(support, "BraveSoftware", "Brave-Browser", "Default"))},
		}
	default:
		config := filepath.Join(home, ".config")
		return []browser{
			{name: "Firefox", profilesIni: []string{
				filepath.Join(home, ".mozilla", "firefox", "profiles.ini"),
				filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox", "profiles.ini"),
			}},
			{name: "LibreWolf", profilesIni: []string{filepath.Join(home, ".librewolf", "profiles.ini")}},
			{name: "Chrome", files: chromiumFiles(filepath.Join(config, "google-chrome", "Default"))},
			{name: "Chromium", files: chromiumFiles(filepath.Join(config, "chromium", "Default"))},
			{name: "Edge", files: chromiumFiles(filepath.Join(config, "microsoft-edge", "Default"))},
			{name: "Brave", files: chromiumFiles(filepath.Join(config, "BraveSoftware", "Brave-Browser", "Default"))},
		}
	}
}

func systemBrowsers() []browser {
	home, err := os.UserHomeDir()
	if err != nil && runtime.GOOS != "windows" {
		return nil
	}
	return knownBrowsers(runtime.GOOS, home, os.Getenv)
}

// candidates returns the existing cookie store files of b.
func (b browser) candidates() []string {
	var out []string
	for _, f := range b.files {
		if _, err := os.Stat(f); err == nil {
			out = append(out, f)
		}
	}
	for _, ini := range b.profilesIni {
		profile := defaultProfile(ini)
		if profile == "" {
			continue
		}
		f := filepath.Join(profile, "cookies.sqlite")
		if _, err := os.Stat(f); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// defaultProfile returns the default profile directory named in a Firefox
// profiles.ini, or "". An [Install*] Default= entry wins over a [Profile*]
// section marked Default=1.
func defaultProfile(iniPath string) string {
	f, err := os.Open(iniPath)
	if err != nil {
		return ""
	}
	defer f.Close()
	base := filepath.Dir(iniPath)

	var (
		install, marked string
		section         string
		path            string
		isDefault       bool
	)
	flush := func() {
		if strings.HasPrefix(section, "Profile") && isDefault && marked == "" {
			marked = path
		}
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			section = line[1 : len(line)-1]
			path, isDefault = "", false
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch {
		case strings.HasPrefix(section, "Install") && k == "Default" && install == "":
			install = filepath.Join(base, filepath.FromSlash(v))
		case strings.HasPrefix(section, "Profile") && k == "Path":
			path = filepath.Join(base, filepath.FromSlash(v))
		case strings.HasPrefix(section, "Profile") && k == "Default" && v == "1":
			isDefault = true
		}
	}
	flush()
	if install != "" {
		return install
	}
	return marked
}
