package game

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleRate 音频上下文采样率
const SampleRate = 44100

// 内置音效 ID
const (
	SoundLaserHit      = "laser_hit"
	SoundDoorOpen      = "door_open"
	SoundInventoryFull = "inventory_full"
)

// Tone 合成音效的参数
type Tone struct {
	Frequency float64 // Hz
	Duration  float64 // 秒
	Volume    float64 // 基础音量 0.0 ~ 1.0
}

// defaultTones 房间里用到的音效都是合成的短音，不需要音频文件
var defaultTones = map[string]Tone{
	SoundLaserHit:      {Frequency: 880, Duration: 0.08, Volume: 0.4},
	SoundDoorOpen:      {Frequency: 220, Duration: 0.6, Volume: 0.7},
	SoundInventoryFull: {Frequency: 330, Duration: 0.15, Volume: 0.5},
}

// AudioManager 音频管理器
//
// 统一管理音效播放，音量乘以 SettingsManager 中的音效倍率。
// context 为 nil 时所有播放调用都返回 false（测试和无音频设备时）。
type AudioManager struct {
	context         *audio.Context
	settingsManager *SettingsManager
	tones           map[string]Tone
	soundPlayers    map[string]*audio.Player // 音效播放器缓存（音效ID -> 播放器）
}

// NewAudioManager 创建新的音频管理器，ctx 和 sm 都可为 nil
func NewAudioManager(ctx *audio.Context, sm *SettingsManager) *AudioManager {
	tones := make(map[string]Tone, len(defaultTones))
	for id, tone := range defaultTones {
		tones[id] = tone
	}
	return &AudioManager{
		context:         ctx,
		settingsManager: sm,
		tones:           tones,
		soundPlayers:    make(map[string]*audio.Player),
	}
}

// RegisterTone 注册或替换一个合成音效
func (am *AudioManager) RegisterTone(soundID string, tone Tone) {
	am.tones[soundID] = tone
	delete(am.soundPlayers, soundID)
}

// PlaySound 播放音效，返回是否成功播放
func (am *AudioManager) PlaySound(soundID string) bool {
	volume := am.SoundVolume(soundID)
	if volume <= 0 {
		return false
	}

	player := am.getSoundPlayer(soundID)
	if player == nil {
		return false
	}

	player.SetVolume(volume)
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind sound %s: %v", soundID, err)
	}
	player.Play()
	return true
}

// SoundVolume 音效的实际音量（基础音量 × 音效倍率），未知音效返回 0
func (am *AudioManager) SoundVolume(soundID string) float64 {
	tone, ok := am.tones[soundID]
	if !ok {
		return 0
	}
	multiplier := 1.0
	if am.settingsManager != nil {
		multiplier = am.settingsManager.GetSettings().SFXMultiplier
	}
	return tone.Volume * multiplier
}

func (am *AudioManager) getSoundPlayer(soundID string) *audio.Player {
	if am.context == nil {
		return nil
	}
	if player, ok := am.soundPlayers[soundID]; ok {
		return player
	}

	tone, ok := am.tones[soundID]
	if !ok {
		log.Printf("[AudioManager] Warning: unknown sound %s", soundID)
		return nil
	}

	player := am.context.NewPlayerFromBytes(SynthesizeTone(tone, am.context.SampleRate()))
	am.soundPlayers[soundID] = player
	return player
}

// SynthesizeTone 生成 16 位小端双声道 PCM 正弦波
//
// 首尾各 10ms 线性淡入淡出，避免爆音。
func SynthesizeTone(tone Tone, sampleRate int) []byte {
	if tone.Duration <= 0 || sampleRate <= 0 {
		return nil
	}

	samples := int(tone.Duration * float64(sampleRate))
	fade := sampleRate / 100
	buf := make([]byte, samples*4)

	for i := 0; i < samples; i++ {
		envelope := 1.0
		if i < fade {
			envelope = float64(i) / float64(fade)
		} else if samples-i < fade {
			envelope = float64(samples-i) / float64(fade)
		}

		v := math.Sin(2*math.Pi*tone.Frequency*float64(i)/float64(sampleRate)) * envelope
		s := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], s)
		binary.LittleEndian.PutUint16(buf[i*4+2:], s)
	}
	return buf
}
