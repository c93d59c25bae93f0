// Command amp-render runs a WAV file through a neural amp model offline.
//
// Usage:
//
//	amp-render -model amp.json input.wav output.wav
//	amp-render -model amp.json -set master=3 -set eq_pos=1 in.wav out.wav
//	amp-render -model amp.json -set mtype=1 -set mfreq=900 in.wav wah.wav
//
// Multichannel input is downmixed to mono before processing; the output
// is always a mono file at the input's sample rate and bit depth.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	neuralamp "github.com/aidadsp/go-neural-amp"
)

const (
	// Samples per processing chunk.
	bufferSize = 4096

	// CLI argument count: input and output path.
	minRequiredArgs = 2

	// Full-scale values per PCM bit depth.
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	maxInt16        = 32767.0
	maxInt24        = 8388607.0
	maxInt32        = 2147483647.0

	// WAV output is plain PCM.
	wavAudioFormatPCM = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// paramFlags collects repeated -set symbol=value pairs.
type paramFlags []string

func (p *paramFlags) String() string { return strings.Join(*p, ",") }

func (p *paramFlags) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func run() error {
	modelPath := flag.String("model", "", "Model description file (json)")
	verbose := flag.Bool("v", false, "Verbose output")
	var params paramFlags
	flag.Var(&params, "set", "Parameter override as symbol=value (repeatable)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs || *modelPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -model amp.json [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	inputPath := args[0]
	outputPath := args[1]

	inFile, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer func() { _ = inFile.Close() }()

	dec := wav.NewDecoder(inFile)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", inputPath)
	}
	sampleRate := int(dec.SampleRate)
	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	engine, err := neuralamp.NewWithModel(*modelPath, float64(sampleRate))
	if err != nil {
		return err
	}
	if err := applyOverrides(engine, params); err != nil {
		return err
	}
	engine.Activate()

	if *verbose {
		m := engine.Model()
		log.Printf("Input: %s (%d Hz, %d channels, %d-bit)", inputPath, sampleRate, channels, bitDepth)
		log.Printf("Model: %s (%s, %d hidden units)", filepath.Base(*modelPath), m.Arch(), m.HiddenSize())
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() { _ = outFile.Close() }()

	enc := wav.NewEncoder(outFile, sampleRate, bitDepth, 1, wavAudioFormatPCM)

	start := time.Now()
	samples, err := render(engine, dec, enc, channels, bitDepth)
	if err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing output: %w", err)
	}
	fmt.Printf("Rendered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d samples, %.2fs audio, %.1fx realtime\n",
		samples,
		float64(samples)/float64(sampleRate),
		float64(samples)/float64(sampleRate)/time.Since(start).Seconds())
	return nil
}

// applyOverrides parses -set pairs and writes them into the parameter
// table.
func applyOverrides(engine *neuralamp.Engine, params paramFlags) error {
	for _, pair := range params {
		symbol, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("malformed -set %q, want symbol=value", pair)
		}
		index, ok := neuralamp.ParamIndexBySymbol(symbol)
		if !ok {
			return fmt.Errorf("unknown parameter %q", symbol)
		}
		value, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", symbol, err)
		}
		spec := neuralamp.ParamSpecs[index]
		if float32(value) < spec.Min || float32(value) > spec.Max {
			return fmt.Errorf("parameter %q: %v outside [%v, %v]", symbol, value, spec.Min, spec.Max)
		}
		engine.SetParameterValue(index, float32(value))
	}
	return nil
}

// render streams the decoder through the engine chunk by chunk.
func render(engine *neuralamp.Engine, dec *wav.Decoder, enc *wav.Encoder, channels, bitDepth int) (int64, error) {
	maxVal := maxValue(bitDepth)
	invMaxVal := 1.0 / maxVal

	format := &audio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)}
	intBuf := &audio.IntBuffer{Data: make([]int, bufferSize*channels), Format: format}
	mono := make([]float32, bufferSize)
	outBuf := &audio.IntBuffer{
		Data:           make([]int, bufferSize),
		Format:         &audio.Format{NumChannels: 1, SampleRate: int(dec.SampleRate)},
		SourceBitDepth: bitDepth,
	}

	var total int64
	for {
		n, err := dec.PCMBuffer(intBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return total, fmt.Errorf("reading audio data: %w", err)
		}
		if n == 0 {
			return total, nil
		}
		frames := n / channels

		downmix(intBuf.Data[:n], mono[:frames], channels, invMaxVal)
		engine.Process(mono[:frames], mono[:frames])
		quantize(mono[:frames], outBuf.Data[:frames], maxVal)

		outBuf.Data = outBuf.Data[:frames]
		if err := enc.Write(outBuf); err != nil {
			return total, fmt.Errorf("writing audio data: %w", err)
		}
		outBuf.Data = outBuf.Data[:cap(outBuf.Data)]
		total += int64(frames)
	}
}

// downmix averages interleaved channels into a normalized mono buffer.
func downmix(data []int, mono []float32, channels int, invMaxVal float64) {
	if channels == 1 {
		for i := range mono {
			mono[i] = float32(float64(data[i]) * invMaxVal)
		}
		return
	}

	scale := invMaxVal / float64(channels)
	for i := range mono {
		var sum float64
		base := i * channels
		for ch := 0; ch < channels; ch++ {
			sum += float64(data[base+ch])
		}
		mono[i] = float32(sum * scale)
	}
}

// quantize converts processed samples back to clamped integer PCM.
func quantize(mono []float32, data []int, maxVal float64) {
	for i, v := range mono {
		sample := float64(v)
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		data[i] = int(sample * maxVal)
	}
}

// maxValue returns the full-scale sample value for the given bit depth.
func maxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	case bitsPerSample16:
		return maxInt16
	default:
		return maxInt16
	}
}
