package uni20

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"
)

//go:embed scripts/probe.py
var probeScript string

// Greeting is the literal string the bindings' greet() entry point returns.
// The smoke probe asserts on it verbatim.
const Greeting = "Hello from uni20!"

// DefaultStartupTimeout bounds how long NewProbe waits for the probe to
// import the uni20 module and report readiness.
const DefaultStartupTimeout = 30 * time.Second

// ErrProbeClosed is returned by calls made after the probe has shut down or
// its interpreter has exited.
var ErrProbeClosed = errors.New("uni20 probe is closed")

// ProbeOptions configures probe startup.
type ProbeOptions struct {
	// Env contains additional environment variables for the interpreter.
	Env map[string]string

	// StartupTimeout bounds the wait for the probe's ready message.
	// Zero means DefaultStartupTimeout.
	StartupTimeout time.Duration

	// Stderr receives the interpreter's stderr stream. Nil means os.Stderr.
	Stderr io.Writer
}

// Probe is a running Python subprocess that has imported the uni20 bindings
// and serves the greet and buildinfo entry points over framed pipes.
//
// A Probe is safe for concurrent use: requests carry unique IDs and the
// receive loop correlates responses, so overlapping calls from multiple
// goroutines are permitted.
type Probe struct {
	cmd        *exec.Cmd
	transport  Transport
	serializer Serializer
	statusIn   *os.File

	mutex       sync.Mutex
	responseMap map[string]chan map[string]interface{}
	running     bool
	closed      bool

	idMutex sync.Mutex
	nextID  int64

	// waitErr delivers the interpreter's exit status exactly once.
	waitErr chan error

	// Codec is the payload codec negotiated with the probe
	// ("msgpack" or "json").
	Codec string
}

// readyMessage is the probe's startup report on the status pipe.
type readyMessage struct {
	Codec         string `json:"codec"`
	PythonVersion string `json:"python_version"`
}

// NewProbe launches the probe interpreter against the resolved bindings.
//
// The probe program is embedded in the binary and handed to the interpreter
// via -c. The bindings directory and the pipe file descriptors are passed as
// arguments; the probe prepends the directory to sys.path, imports uni20,
// and reports readiness (or the import exception) on the status pipe before
// serving requests.
//
// NewProbe blocks until the probe is ready, the import fails, or the startup
// timeout elapses. opts may be nil.
func (env *PythonEnvironment) NewProbe(bindings *Bindings, opts *ProbeOptions) (*Probe, error) {
	if bindings == nil {
		return nil, ErrBindingsNotConfigured
	}
	if runtime.GOOS == "windows" {
		// exec.Cmd cannot pass extra pipe descriptors on Windows, and the
		// compiled uni20 artifacts are ELF/Mach-O anyway.
		return nil, errors.New("the uni20 probe is not supported on windows; run under WSL")
	}
	if opts == nil {
		opts = &ProbeOptions{}
	}
	startupTimeout := opts.StartupTimeout
	if startupTimeout == 0 {
		startupTimeout = DefaultStartupTimeout
	}

	// in: probe -> Go, out: Go -> probe, status: probe -> Go (JSON lines).
	inReader, inWriter, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	outReader, outWriter, err := os.Pipe()
	if err != nil {
		closeFiles(inReader, inWriter)
		return nil, err
	}
	statusReader, statusWriter, err := os.Pipe()
	if err != nil {
		closeFiles(inReader, inWriter, outReader, outWriter)
		return nil, err
	}
	pipes := []*os.File{inReader, inWriter, outReader, outWriter, statusReader, statusWriter}

	cmd := exec.Command(env.PythonPath, "-u", "-c", probeScript)
	setPlatformProcAttr(cmd)

	// The probe sees its ends of the pipes as inherited descriptors. On
	// Unix these are numbered from 3 in ExtraFiles order.
	fds := setExtraFiles(cmd, []*os.File{outReader, inWriter, statusWriter})
	cmd.Args = append(cmd.Args, fds...)
	cmd.Args = append(cmd.Args, bindings.Dir)

	cmd.Env = os.Environ()
	for key, value := range opts.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		closeFiles(pipes...)
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		closeFiles(pipes...)
		return nil, fmt.Errorf("error starting probe interpreter: %w", err)
	}

	// The child owns these ends now.
	outReader.Close()
	inWriter.Close()
	statusWriter.Close()

	go func() {
		io.Copy(stderr, stderrPipe)
	}()

	probe := &Probe{
		cmd:         cmd,
		transport:   NewFrameTransport(inReader, outWriter),
		statusIn:    statusReader,
		responseMap: make(map[string]chan map[string]interface{}),
		nextID:      1,
		waitErr:     make(chan error, 1),
	}

	readyChan := make(chan readyMessage, 1)
	exceptionChan := make(chan *PythonError, 1)
	go probe.statusLoop(readyChan, exceptionChan)

	go func() {
		probe.waitErr <- cmd.Wait()
	}()

	select {
	case ready := <-readyChan:
		probe.Codec = ready.Codec
		probe.serializer = serializerForCodec(ready.Codec)
	case pyErr := <-exceptionChan:
		probe.terminate()
		return nil, fmt.Errorf("uni20 module unavailable: %w", pyErr)
	case err := <-probe.waitErr:
		// The interpreter exited. It may have written an exception report
		// just before dying; give the status reader a moment to deliver it.
		select {
		case pyErr := <-exceptionChan:
			probe.transport.Close()
			probe.statusIn.Close()
			return nil, fmt.Errorf("uni20 module unavailable: %w", pyErr)
		case <-time.After(250 * time.Millisecond):
		}
		probe.transport.Close()
		probe.statusIn.Close()
		if err == nil {
			err = errors.New("probe interpreter exited before becoming ready")
		}
		return nil, fmt.Errorf("probe interpreter failed: %w", err)
	case <-time.After(startupTimeout):
		probe.terminate()
		return nil, fmt.Errorf("timed out after %s waiting for probe to become ready", startupTimeout)
	}

	probe.running = true
	go probe.receiveLoop()

	return probe, nil
}

// statusLoop reads JSON lines from the status pipe. The probe writes one
// ready message at startup and exception reports thereafter.
func (p *Probe) statusLoop(readyChan chan<- readyMessage, exceptionChan chan<- *PythonError) {
	scanner := bufio.NewScanner(p.statusIn)
	for scanner.Scan() {
		line := scanner.Bytes()
		var header struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &header); err != nil {
			continue
		}
		switch header.Type {
		case "ready":
			var ready readyMessage
			if err := json.Unmarshal(line, &ready); err == nil {
				select {
				case readyChan <- ready:
				default:
				}
			}
		case "exception":
			if pyErr, err := NewPythonErrorFromJSON(line); err == nil {
				select {
				case exceptionChan <- pyErr:
				default:
				}
			}
		}
	}
}

// receiveLoop reads responses from the probe and routes them to waiting
// callers by request ID. It exits when the pipe closes, failing any calls
// still in flight.
func (p *Probe) receiveLoop() {
	for {
		body, err := p.transport.Receive()
		if err != nil {
			break
		}

		var message map[string]interface{}
		if err := p.serializer.Unmarshal(body, &message); err != nil {
			continue
		}
		requestID, ok := message["request_id"].(string)
		if !ok {
			continue
		}

		p.mutex.Lock()
		if ch, exists := p.responseMap[requestID]; exists {
			ch <- message
			delete(p.responseMap, requestID)
		}
		p.mutex.Unlock()
	}

	// Pipe closed: fail everything still pending.
	p.mutex.Lock()
	p.running = false
	for id, ch := range p.responseMap {
		close(ch)
		delete(p.responseMap, id)
	}
	p.mutex.Unlock()
}

func (p *Probe) generateRequestID() string {
	p.idMutex.Lock()
	defer p.idMutex.Unlock()
	id := fmt.Sprintf("req-%d", p.nextID)
	p.nextID++
	return id
}

// call sends one request to the probe and waits for the correlated response,
// honoring ctx cancellation.
func (p *Probe) call(ctx context.Context, command string, data interface{}) (interface{}, error) {
	requestID := p.generateRequestID()
	request := map[string]interface{}{
		"command":    command,
		"data":       data,
		"request_id": requestID,
	}

	responseChan := make(chan map[string]interface{}, 1)

	p.mutex.Lock()
	if !p.running {
		p.mutex.Unlock()
		return nil, ErrProbeClosed
	}
	p.responseMap[requestID] = responseChan

	body, err := p.serializer.Marshal(request)
	if err != nil {
		delete(p.responseMap, requestID)
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := p.transport.Send(body); err != nil {
		delete(p.responseMap, requestID)
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	p.mutex.Unlock()

	select {
	case response, ok := <-responseChan:
		if !ok {
			return nil, ErrProbeClosed
		}
		return extractResult(response)
	case <-ctx.Done():
		p.mutex.Lock()
		delete(p.responseMap, requestID)
		p.mutex.Unlock()
		return nil, ctx.Err()
	}
}

// closeFiles closes every file, ignoring errors.
func closeFiles(files ...*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// extractResult unpacks a probe response, converting Python exceptions into
// *PythonError.
func extractResult(response map[string]interface{}) (interface{}, error) {
	if exc, ok := response["exception"].(map[string]interface{}); ok {
		return nil, newPythonErrorFromMap(exc)
	}
	if errMsg, ok := response["error"].(string); ok {
		return nil, fmt.Errorf("probe error: %s", errMsg)
	}
	return response["result"], nil
}

// Greet invokes the bindings' greet() entry point and returns the greeting
// string. A healthy binding returns exactly the Greeting constant.
func (p *Probe) Greet(ctx context.Context) (string, error) {
	result, err := p.call(ctx, "greet", nil)
	if err != nil {
		return "", err
	}
	greeting, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("greet returned %T, expected string", result)
	}
	return greeting, nil
}

// BuildInfo invokes the bindings' buildinfo() entry point and decodes the
// returned mapping. Each call produces a fresh snapshot; nothing is cached
// on either side of the pipe.
//
// The result is decoded but not validated; call Validate on it to check the
// contract.
func (p *Probe) BuildInfo(ctx context.Context) (*BuildInfo, error) {
	result, err := p.call(ctx, "buildinfo", nil)
	if err != nil {
		return nil, err
	}
	raw, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("buildinfo returned %T, expected mapping", result)
	}
	return DecodeBuildInfo(raw)
}

// Ping round-trips a no-op request through the probe, confirming the
// interpreter is alive and the pipes are healthy.
func (p *Probe) Ping(ctx context.Context) error {
	result, err := p.call(ctx, "ping", nil)
	if err != nil {
		return err
	}
	if result != "pong" {
		return fmt.Errorf("unexpected ping response: %v", result)
	}
	return nil
}

// Close shuts the probe down: it sends an exit request (best effort), then
// terminates the interpreter and closes the Go-side pipe ends. Close is
// idempotent, and it releases the pipes even when the interpreter already
// died and the receive loop has stopped.
func (p *Probe) Close() error {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil
	}
	p.closed = true
	wasRunning := p.running
	p.running = false

	if wasRunning {
		// Best-effort exit request so the interpreter can leave cleanly.
		if body, err := p.serializer.Marshal(map[string]interface{}{
			"command":    "exit",
			"request_id": "",
		}); err == nil {
			p.transport.Send(body)
		}
	}
	p.mutex.Unlock()

	if wasRunning {
		time.Sleep(50 * time.Millisecond)
	}
	return p.terminate()
}

// terminate stops the interpreter: SIGTERM first, SIGKILL if it has not
// exited within five seconds. Pipe ends are closed afterwards.
func (p *Probe) terminate() error {
	defer func() {
		p.transport.Close()
		p.statusIn.Close()
	}()

	if p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone.
		return nil
	}

	select {
	case <-time.After(5 * time.Second):
		if err := p.cmd.Process.Kill(); err != nil {
			return err
		}
		<-p.waitErr
		return nil
	case err := <-p.waitErr:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				// Killed by our signal; not a failure.
				return nil
			}
		}
		return err
	}
}
