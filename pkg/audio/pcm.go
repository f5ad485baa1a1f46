// Package audio provides helpers for the 16-bit signed little-endian PCM
// segments that flow from the websocket into the transcription providers.
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// bitsPerSample is fixed at 16 for the signed little-endian PCM audio the
// pipeline carries end to end.
const bitsPerSample = 16

// EncodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container. The returned byte slice is suitable for direct inclusion
// in a multipart form upload. No external dependencies are required.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	bps := bitsPerSample
	byteRate := sampleRate * channels * bps / 8
	blockAlign := channels * bps / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))   // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate)) // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bps))        // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}

// RMS returns the root-mean-square energy of a 16-bit signed little-endian
// PCM buffer. Returns 0 for buffers shorter than one sample. The result is
// expressed in the same units as PCM sample values (0–32 767).
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2 // number of 16-bit samples
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		v := float64(sample)
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// Duration returns the playback duration of a PCM buffer, based on the sample
// rate and channel count. Returns 0 for invalid inputs.
func Duration(pcm []byte, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	bytesPerSec := sampleRate * channels * (bitsPerSample / 8)
	return time.Duration(len(pcm)) * time.Second / time.Duration(bytesPerSec)
}

// StereoToMono averages L+R per stereo frame (4 bytes) to produce mono output.
// Uses int32 arithmetic to prevent overflow and clamps to int16 range.
func StereoToMono(pcm []byte) []byte {
	// Each stereo frame is 4 bytes (2 bytes L + 2 bytes R).
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := range frames {
		lSample := int32(int16(pcm[i*4]) | int16(pcm[i*4+1])<<8)
		rSample := int32(int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8)
		avg := (lSample + rSample) / 2

		// Clamp to int16 range.
		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}

		out[i*2] = byte(avg)
		out[i*2+1] = byte(avg >> 8)
	}
	return out
}

// ResampleMono16 resamples 16-bit mono PCM from srcRate to dstRate using linear
// interpolation. The input must be little-endian int16 samples. If srcRate ==
// dstRate, the input is returned unchanged.
func ResampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	if srcRate == dstRate || len(pcm) < 2 {
		return pcm
	}
	srcSamples := len(pcm) / 2
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(srcRate) / float64(dstRate)

	for i := range dstSamples {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := int16(pcm[srcIdx*2]) | int16(pcm[srcIdx*2+1])<<8
		var s1 int16
		if srcIdx+1 < srcSamples {
			s1 = int16(pcm[(srcIdx+1)*2]) | int16(pcm[(srcIdx+1)*2+1])<<8
		} else {
			s1 = s0
		}

		interpolated := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		out[i*2] = byte(interpolated)
		out[i*2+1] = byte(interpolated >> 8)
	}
	return out
}
