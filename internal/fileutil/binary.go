package fileutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BinaryProbeSize is the number of leading bytes inspected for null bytes
const BinaryProbeSize = 8192

var binaryExtensions = map[string]bool{
	// executables and libraries
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".obj": true, ".o": true, ".a": true, ".lib": true,
	// images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".tif": true, ".psd": true,
	".raw": true, ".heic": true, ".heif": true,
	// audio
	".mp3": true, ".wav": true, ".flac": true, ".aac": true, ".ogg": true,
	".wma": true, ".m4a": true,
	// video
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true,
	// archives
	".zip": true, ".tar": true, ".gz": true, ".7z": true, ".rar": true,
	".bz2": true, ".xz": true, ".zst": true,
	// office documents
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	// fonts
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	// bytecode and packages
	".pyc": true, ".pyo": true, ".class": true, ".pdb": true, ".nupkg": true,
	".snupkg": true, ".jar": true, ".war": true, ".ear": true, ".node": true,
	".wasm": true,
	// databases
	".db": true, ".sqlite": true, ".sqlite3": true, ".mdb": true,
	// disk images and installers
	".iso": true, ".dmg": true, ".pkg": true, ".deb": true, ".rpm": true,
}

// IsBinaryExtension reports whether the file extension is a known binary format.
// The check is case-insensitive and does no I/O.
func IsBinaryExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext != "" && binaryExtensions[ext]
}

// ContainsNullBytes reports whether the first BinaryProbeSize bytes of the file
// contain a null byte. Read errors report false; the real error is left for the
// content loader to surface.
func ContainsNullBytes(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, BinaryProbeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// IsBinary checks the extension first and only reads the file when the
// extension is not conclusive. A text file with a binary extension is therefore
// reported as binary without being read.
func IsBinary(path string) bool {
	return IsBinaryExtension(path) || ContainsNullBytes(path)
}
