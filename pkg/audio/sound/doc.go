// ABOUTME: Sound playback package
// ABOUTME: Binds shared samples to device voices
// Package sound provides playback instances over shared samples.
//
// Example:
//
//	snd, err := sound.New(ref, device)
//	if err != nil {
//	    return err
//	}
//	defer snd.Close()
//	snd.Play()
package sound
