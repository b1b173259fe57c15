// Package audio plays a scene's ambient loop and its teleport effect
// through raylib. The audio device is opened by the caller; without it
// every call is a no-op.
package audio

import (
	"portalview/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type stream struct {
	music  rl.Music
	active bool
}

// Manager owns the sounds of one scene.
type Manager struct {
	volume  float32
	streams []*stream
	effects map[string]rl.Sound
}

func NewManager(volume float32) *Manager {
	return &Manager{
		volume:  volume,
		effects: make(map[string]rl.Sound),
	}
}

func ready() bool {
	return rl.IsAudioDeviceReady()
}

// PlayMusic streams path, looping when loop is set.
func (m *Manager) PlayMusic(path string, loop bool) {
	if !ready() {
		return
	}
	music := rl.LoadMusicStream(path)
	if !rl.IsMusicValid(music) {
		utils.Warn("audio: cannot load %s", path)
		return
	}
	music.Looping = loop
	rl.SetMusicVolume(music, m.volume)
	rl.PlayMusicStream(music)
	m.streams = append(m.streams, &stream{music: music, active: true})
	utils.Info("audio: playing %s (vol %.2f)", path, m.volume)
}

// LoadEffect loads a short sound under name, replacing any previous one.
func (m *Manager) LoadEffect(name, path string) {
	if !ready() {
		return
	}
	sound := rl.LoadSound(path)
	if !rl.IsSoundValid(sound) {
		utils.Warn("audio: cannot load %s", path)
		return
	}
	rl.SetSoundVolume(sound, m.volume)
	if old, ok := m.effects[name]; ok {
		rl.UnloadSound(old)
	}
	m.effects[name] = sound
}

func (m *Manager) PlayEffect(name string) {
	if sound, ok := m.effects[name]; ok {
		rl.PlaySound(sound)
	}
}

// Update feeds the music streams; call once per frame.
func (m *Manager) Update() {
	for _, s := range m.streams {
		if s.active {
			rl.UpdateMusicStream(s.music)
		}
	}
}

// Close stops and unloads everything the manager loaded.
func (m *Manager) Close() {
	for _, s := range m.streams {
		if s.active {
			rl.StopMusicStream(s.music)
			rl.UnloadMusicStream(s.music)
			s.active = false
		}
	}
	for name, sound := range m.effects {
		rl.UnloadSound(sound)
		delete(m.effects, name)
	}
	m.streams = nil
}
