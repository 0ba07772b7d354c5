// Package storage работает с файлами под корневым каталогом через afero.Fs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/internal/pathresolve"
)

// tempPrefix помечает незавершённые загрузки. Такие файлы не отдаются и не показываются в списке.
const tempPrefix = ".upload-"

// Store работает с файлами под Root. Состояние между запросами не кешируется.
type Store struct {
	fs             afero.Fs
	root           string
	followSymlinks bool
}

// New создаёт хранилище поверх fs с корнем root (абсолютный путь).
func New(fs afero.Fs, root string, followSymlinks bool) *Store {
	return &Store{
		fs:             fs,
		root:           filepath.Clean(root),
		followSymlinks: followSymlinks,
	}
}

// Root возвращает корневой каталог.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot создаёт корень, если его нет.
func (s *Store) EnsureRoot() error {
	return s.fs.MkdirAll(s.root, 0o755)
}

// Open открывает обычный файл по уже разрешённому пути.
func (s *Store) Open(rp pathresolve.ResolvedPath) (afero.File, os.FileInfo, error) {
	if !rp.WithinRoot {
		return nil, nil, models.ErrPathTraversal
	}
	if Reserved(filepath.Base(rp.AbsolutePath)) {
		return nil, nil, models.ErrNotFound
	}

	if err := s.checkSymlink(rp.AbsolutePath); err != nil {
		return nil, nil, err
	}

	info, err := s.fs.Stat(rp.AbsolutePath)
	if err != nil {
		return nil, nil, notFound(err)
	}
	if info.IsDir() {
		return nil, nil, models.ErrIsDirectory
	}
	if !info.Mode().IsRegular() {
		return nil, nil, models.ErrNotFound
	}

	f, err := s.fs.Open(rp.AbsolutePath)
	if err != nil {
		return nil, nil, notFound(err)
	}

	return f, info, nil
}

// maxLinkHops ограничивает длину цепочки симлинков, как ELOOP в ядре.
const maxLinkHops = 40

// checkSymlink не даёт уйти из корня через симлинки на любом уровне пути.
// Ссылки разбираются через сам afero.Fs (Lstater + LinkReader), поэтому проверка
// работает и для BasePathFs. Для fs без Lstat (MemMapFs) симлинков не бывает.
func (s *Store) checkSymlink(p string) error {
	lst, ok := s.fs.(afero.Lstater)
	if !ok {
		return nil
	}

	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return models.ErrPathTraversal
	}
	pending := splitPath(rel)
	cur := s.root
	hops := 0

	for len(pending) > 0 {
		next := filepath.Join(cur, pending[0])
		pending = pending[1:]
		if !pathresolve.Within(s.root, next) {
			return models.ErrPathTraversal
		}

		info, lstatCalled, err := lst.LstatIfPossible(next)
		if err != nil {
			return notFound(err)
		}
		if !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			cur = next
			continue
		}

		if !s.followSymlinks {
			return models.ErrNotFound
		}
		hops++
		if hops > maxLinkHops {
			return models.ErrNotFound
		}
		lr, ok := s.fs.(afero.LinkReader)
		if !ok {
			return models.ErrNotFound
		}
		target, err := lr.ReadlinkIfPossible(next)
		if err != nil {
			return notFound(err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(cur, target)
		}
		target = filepath.Clean(target)
		if !pathresolve.Within(s.root, target) {
			return models.ErrPathTraversal
		}

		// цель ссылки разбираем заново от корня: в ней тоже могут быть симлинки
		targetRel, _ := filepath.Rel(s.root, target)
		pending = append(splitPath(targetRel), pending...)
		cur = s.root
	}

	return nil
}

func splitPath(rel string) []string {
	if rel == "." || rel == "" {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}

// Reserved сообщает, что имя занято под временные файлы загрузок.
// Такой файл не отдаётся, не виден в списке и удаляется GC.
func Reserved(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}

// List возвращает файлы непосредственно в корне, отсортированные по имени.
// exts фильтрует по расширению (".mp4"); пустой список отключает фильтр.
func (s *Store) List(exts []string) ([]models.Entry, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, err
	}

	out := make([]models.Entry, 0, len(infos))
	for _, fi := range infos {
		name := fi.Name()
		if fi.IsDir() || Reserved(name) {
			continue
		}
		if !matchExt(name, exts) {
			continue
		}
		out = append(out, models.Entry{Name: name, Size: fi.Size(), ModTime: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// Save пишет r во временный файл рядом с целевым и переименовывает его в dst.
// Читатель того же имени видит либо старую, либо новую версию целиком.
func (s *Store) Save(rp pathresolve.ResolvedPath, r io.Reader) (int64, error) {
	if !rp.WithinRoot || rp.AbsolutePath == s.root || Reserved(filepath.Base(rp.AbsolutePath)) {
		return 0, models.ErrInvalidName
	}
	if info, err := s.fs.Stat(rp.AbsolutePath); err == nil && info.IsDir() {
		return 0, models.ErrInvalidName
	}
	dir := filepath.Dir(rp.AbsolutePath)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	tmp := filepath.Join(dir, tempPrefix+uuid.NewString())
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return n, err
	}

	if err := s.fs.Rename(tmp, rp.AbsolutePath); err != nil {
		_ = s.fs.Remove(tmp)
		return n, err
	}

	return n, nil
}

// Sweep удаляет временные файлы загрузок старше ttl и возвращает их число.
func (s *Store) Sweep(ttl time.Duration) (int, error) {
	now := time.Now()
	removed := 0
	err := afero.Walk(s.fs, s.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || !Reserved(info.Name()) {
			return nil
		}
		if now.Sub(info.ModTime()) < ttl {
			return nil
		}
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})

	return removed, err
}

// Usage считает суммарный размер и число отдаваемых файлов под корнем, включая подкаталоги.
func (s *Store) Usage() (total int64, files int, err error) {
	err = afero.Walk(s.fs, s.root, func(_ string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// незавершённые загрузки не отдаются, поэтому и не считаются
		if info.IsDir() || Reserved(info.Name()) {
			return nil
		}
		total += info.Size()
		files++
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}

	return total, files, err
}

func matchExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%w: %w", models.ErrIO, err)
}
