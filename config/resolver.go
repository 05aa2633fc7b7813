package config

import (
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
)

// FileSystem is the file access the loader needs. Tests substitute it.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem reads the local disk and loads .env files into the
// process environment.
type RealFileSystem struct{}

func (RealFileSystem) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func (RealFileSystem) LoadEnv(p string) error { return godotenv.Load(p) }

func (RealFileSystem) Getwd() (string, error) { return os.Getwd() }

// ResolvedFiles are the config and env files chosen for a service. Either
// may be empty.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver locates config.yml and .env files for a service.
//
// Config files are looked up in cmd/<service>/ (and cmd/<short>/, where
// short is the part after the last dash) up to two directories above the
// working directory, then ./<service>.yml, then config/ and the working
// directory. Env files named .env.<service> are preferred over .env in the
// same set of directories.
type Resolver struct {
	FileSystem FileSystem
}

// ResolveFiles returns explicit paths from opts when set and searches for
// the rest.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) first(candidates []string) string {
	for _, c := range candidates {
		if r.FileSystem.Exists(c) {
			return c
		}
	}
	return ""
}

// serviceNames returns the full service name and, when it differs, its
// short form.
func serviceNames(serviceName string) []string {
	names := []string{serviceName}
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 && idx < len(serviceName)-1 {
		names = append(names, serviceName[idx+1:])
	}
	return names
}

// upward prefixes dir with ./, ../ and ../../.
func upward(dir, file string) []string {
	out := make([]string, 0, 3)
	for _, up := range []string{".", "..", "../.."} {
		out = append(out, up+"/"+path.Join(dir, file))
	}
	return out
}

func configCandidates(serviceName string) []string {
	var out []string
	for _, up := range []string{".", "..", "../.."} {
		for _, name := range serviceNames(serviceName) {
			out = append(out, up+"/"+path.Join("cmd", name, "config.yml"))
		}
	}
	return append(out,
		"./"+serviceName+".yml",
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	)
}

func envCandidates(serviceName string) []string {
	var dirs []string
	for _, name := range serviceNames(serviceName) {
		dirs = append(dirs, path.Join("cmd", name), path.Join("config", name), "config", "")
	}

	var out []string
	for _, file := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			out = append(out, upward(dir, file)...)
			if dir == "" {
				out = append(out, file)
			}
		}
	}
	return out
}
