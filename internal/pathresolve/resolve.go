// Package pathresolve отображает путь из URL на путь внутри корневого каталога.
package pathresolve

import (
	"path/filepath"
	"strings"
)

// ResolvedPath описывает результат разрешения пути запроса.
// Файловый ввод-вывод допустим только при WithinRoot == true.
type ResolvedPath struct {
	AbsolutePath string
	WithinRoot   bool
}

// Resolve склеивает requestPath с root и нормализует результат лексически,
// не обращаясь к файловой системе. requestPath ожидается уже percent-decoded.
func Resolve(root, requestPath string) ResolvedPath {
	rootAbs := cleanRoot(root)

	rel := strings.TrimPrefix(requestPath, "/")
	abs := filepath.Clean(filepath.Join(rootAbs, filepath.FromSlash(rel)))

	if strings.ContainsRune(requestPath, 0) {
		return ResolvedPath{AbsolutePath: abs, WithinRoot: false}
	}

	return ResolvedPath{
		AbsolutePath: abs,
		WithinRoot:   Within(rootAbs, abs),
	}
}

// Within сравнивает пути покомпонентно: "/srv/media-evil" не лежит внутри "/srv/media".
func Within(root, p string) bool {
	rel, err := filepath.Rel(cleanRoot(root), filepath.Clean(p))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func cleanRoot(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return filepath.Clean(root)
}
