package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

func (m *model) initWatcher() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		return
	}
	// Editors often replace files, so watch the directory.
	if err := w.Add(filepath.Dir(m.doc.Path)); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		_ = w.Close()
		return
	}
	m.watcher = w
}

// watchFile blocks until the document changes on disk.
func (m model) watchFile() tea.Msg {
	if m.watcher == nil {
		return nil
	}
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != m.doc.Path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return reloadMsg{}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "error", err)
		}
	}
}

func (m *model) closeWatcher() {
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}
