// Package uriutil converts between file system paths and file:// URIs,
// covering Windows drive letters, UNC shares, and percent-encoding.
package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI converts a file system path to a file:// URI. The path is
// made absolute first and each segment is percent-encoded:
//
//	C:\proj          -> file:///C:/proj
//	/home/user       -> file:///home/user
//	\\server\share   -> file://server/share
//	C:\Foo Bar       -> file:///C:/Foo%20Bar
func PathToURI(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	// UNC shares keep the server as the URI host
	if runtime.GOOS == "windows" && strings.HasPrefix(absPath, `\\`) {
		uncPath := filepath.ToSlash(strings.TrimPrefix(absPath, `\\`))
		return "file://" + encodeSegments(uncPath)
	}

	absPath = filepath.ToSlash(absPath)
	// Windows drive paths need the leading slash: C:/proj -> /C:/proj
	if !strings.HasPrefix(absPath, "/") {
		absPath = "/" + absPath
	}
	return "file://" + encodeSegments(absPath)
}

func encodeSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = url.PathEscape(seg)
		}
	}
	return strings.Join(segments, "/")
}

// URIToPath converts a file:// URI back to a file system path, with
// percent-decoding and OS-specific separators:
//
//	file:///C:/proj        -> C:\proj (on Windows)
//	file:///home/user      -> /home/user
//	file://server/share    -> \\server\share (on Windows)
//	file:///C:/Foo%20Bar   -> C:\Foo Bar
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uriFallback(uri)
	}

	path := parsed.Path

	// a non-empty host names a UNC share
	if parsed.Host != "" {
		if runtime.GOOS == "windows" {
			host, _ := url.PathUnescape(parsed.Host)
			pathDecoded, _ := url.PathUnescape(path)
			return `\\` + host + strings.ReplaceAll(pathDecoded, "/", `\`)
		}
		return parsed.Host + path
	}

	decodedPath, err := url.PathUnescape(path)
	if err != nil {
		decodedPath = path
	}
	return filepath.FromSlash(stripDriveSlash(decodedPath))
}

// uriFallback recovers a path from a URI the net/url parser rejects
func uriFallback(uri string) string {
	path := uri
	if strings.HasPrefix(path, "file:///") {
		path = path[7:] // keep one slash
	} else if strings.HasPrefix(path, "file://") {
		path = path[7:]
	}
	return filepath.FromSlash(stripDriveSlash(path))
}

// stripDriveSlash turns /C:/proj into C:/proj on drive-letter paths
func stripDriveSlash(path string) string {
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		return path[1:]
	}
	return path
}
