package domain

import (
	"fmt"
	"hash/adler32"
	"io"
	"os"
	"path"
	"strings"
)

// PFNParts — компоненты разобранного PFN.
type PFNParts struct {
	Protocol string
	Host     string
	Port     string
	Path     string
	Filename string
}

// ParsePFN разбирает PFN на компоненты.
//
// Поддерживаются URL-формы (root://, srm://, https://, ...) и
// локальные абсолютные пути.
func ParsePFN(pfn string) PFNParts {
	var parts PFNParts

	protocol, rest, ok := strings.Cut(pfn, "://")
	if !ok {
		parts.Path = pfn
		parts.Filename = path.Base(pfn)
		return parts
	}
	parts.Protocol = protocol

	hostPort, p, ok := strings.Cut(rest, "/")
	if ok {
		parts.Path = "/" + p
		parts.Filename = path.Base(p)
	}

	// IPv6-адреса в скобках не разбираем на host:port
	if i := strings.LastIndex(hostPort, ":"); i >= 0 && !strings.HasPrefix(hostPort, "[") {
		parts.Host = hostPort[:i]
		parts.Port = hostPort[i+1:]
	} else {
		parts.Host = hostPort
	}

	return parts
}

// FileFromLocalPFN строит FileInfo для локального файла:
// размер берётся из stat, чексумма вычисляется (adler32).
//
// LFN, если не задан, выводится из имени файла в PFN.
func FileFromLocalPFN(pfn, lfn, scope string) (FileInfo, error) {
	if lfn == "" {
		lfn = ParsePFN(pfn).Filename
		if lfn == "" {
			return FileInfo{}, fmt.Errorf("%w: cannot derive lfn from pfn %q", ErrValidation, pfn)
		}
	}

	st, err := os.Stat(pfn)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat pfn: %w", err)
	}

	checksum, err := AdlerChecksum(pfn)
	if err != nil {
		return FileInfo{}, err
	}

	f := FileInfo{
		LFN:      lfn,
		PFN:      pfn,
		Scope:    scope,
		Size:     st.Size(),
		Checksum: checksum,
		GUID:     NewGUID(),
	}
	return f, f.Validate()
}

// AdlerChecksum вычисляет adler32-чексумму файла в формате "ad:<hex>".
func AdlerChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer f.Close()

	h := adler32.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}

	return fmt.Sprintf("ad:%08x", h.Sum32()), nil
}
