package haloengine

import (
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2/audio"
	mp3 "github.com/hajimehoshi/go-mp3"
)

const ambientSampleRate = 44100

// AmbientPlayer loops MP3 tracks from a directory behind the scene. Volume
// is resampled continuously from the callback, which the viewer wires to
// the canvas opacity so the soundtrack fades out with the scene.
type AmbientPlayer struct {
	AudioDir   string
	Volume     func() float64
	OnMetadata func(song, artist string)

	audioContext *audio.Context
	stopChan     chan struct{}
	stoppedChan  chan struct{}
}

func NewAmbientPlayer(dir string, volume func() float64, onMetadata func(song, artist string)) *AmbientPlayer {
	return &AmbientPlayer{
		AudioDir:    dir,
		Volume:      volume,
		OnMetadata:  onMetadata,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

func (p *AmbientPlayer) Shutdown() {
	close(p.stopChan)
	<-p.stoppedChan
	log.Println("Ambient player stopped.")
}

func (p *AmbientPlayer) Start() {
	go func() {
		defer close(p.stoppedChan)
		for {
			select {
			case <-p.stopChan:
				return
			default:
			}

			var tracks []string
			err := filepath.Walk(p.AudioDir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".mp3") {
					tracks = append(tracks, path)
				}
				return nil
			})
			if err != nil || len(tracks) == 0 {
				if err != nil {
					log.Printf("Failed to read audio directory: %v", err)
				}
				select {
				case <-time.After(5 * time.Second):
				case <-p.stopChan:
					return
				}
				continue
			}

			path := tracks[rand.Intn(len(tracks))]
			if err := p.playTrack(path); err != nil {
				log.Printf("Failed to play track %s: %v", path, err)
				select {
				case <-time.After(5 * time.Second):
				case <-p.stopChan:
					return
				}
			}
		}
	}()
}

func (p *AmbientPlayer) playTrack(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	song, artist := trackMetadata(f, path)
	if p.OnMetadata != nil {
		p.OnMetadata(song, artist)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return err
	}

	if p.audioContext == nil {
		p.audioContext = audio.NewContext(ambientSampleRate)
	}
	player, err := p.audioContext.NewPlayer(d)
	if err != nil {
		return err
	}
	defer player.Close()

	player.Play()
	log.Printf("Playing: %s", path)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-p.stopChan:
			// Quick fade so the stop isn't a click.
			for v := player.Volume(); v > 0; v -= 0.1 {
				player.SetVolume(v)
				time.Sleep(30 * time.Millisecond)
			}
			return nil
		case <-ticker.C:
			if p.Volume != nil {
				v := p.Volume()
				if v < 0 {
					v = 0
				}
				if v > 1 {
					v = 1
				}
				player.SetVolume(v)
			}
		}
	}
	return nil
}

// trackMetadata reads tags, falling back to an "Artist - Title" filename.
func trackMetadata(f *os.File, path string) (song, artist string) {
	if m, err := tag.ReadFrom(f); err == nil {
		if m.Title() != "" {
			return m.Title(), m.Artist()
		}
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if parts := strings.SplitN(base, " - ", 2); len(parts) == 2 {
		return parts[1], parts[0]
	}
	return base, ""
}
