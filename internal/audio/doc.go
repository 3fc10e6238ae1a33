// Package audio plays raw PCM through the system audio device using
// oto/v3, and offers a silent player that keeps the same timing.
package audio
