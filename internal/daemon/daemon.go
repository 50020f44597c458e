package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/leonardotrapani/aulavoz/internal/bus"
	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/notify"
	"github.com/leonardotrapani/aulavoz/internal/render"
	"github.com/leonardotrapani/aulavoz/internal/session"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
)

// Version is reported by the 'v' command; set by the CLI at build time.
var Version = "dev"

type Daemon struct {
	cfg        *config.Manager
	presenter  *render.Terminal
	controller *session.Controller

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*options)

type options struct {
	source   transcriber.Source
	notifier notify.Notifier
	out      io.Writer
}

// WithSource replaces the source built from the config.
func WithSource(s transcriber.Source) Option {
	return func(o *options) { o.source = s }
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithOutput sets where the transcript is printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func New(mgr *config.Manager, opts ...Option) *Daemon {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := mgr.GetConfig()
	if o.notifier == nil {
		o.notifier = notify.New(cfg.NotifierType())
	}

	classifierCfg := cfg.ToClassifierConfig()
	presenter := render.NewTerminal(o.out, cfg.ToRenderOptions(), classifierCfg)

	ctlOpts := []session.Option{
		session.WithNotifier(o.notifier),
		session.WithRestartDelay(cfg.Transcription.RestartDelay),
	}
	source := o.source
	if source == nil {
		var err error
		source, err = transcriber.NewSource(cfg.ToTranscriberConfig(), cfg.ToRecordingConfig())
		if err != nil {
			log.Warnf("Daemon: speech recognition unavailable: %v", err)
			ctlOpts = append(ctlOpts, session.WithCapability(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		cfg:        mgr,
		presenter:  presenter,
		controller: session.New(source, speaker.NewClassifier(classifierCfg), presenter, ctlOpts...),
		ctx:        ctx,
		cancel:     cancel,
	}
	mgr.OnChange(d.applyConfig)
	return d
}

// applyConfig pushes a reloaded config into the running session. Classifier
// state is kept.
func (d *Daemon) applyConfig(cfg *config.Config) {
	cc := cfg.ToClassifierConfig()
	d.controller.UpdateConfig(cc)
	d.presenter.SetConfig(cc)
	d.presenter.SetOptions(cfg.ToRenderOptions())
	log.Infof("Daemon: applied new configuration (%d keywords)", len(cc.Keywords))
}

func (d *Daemon) Controller() *session.Controller { return d.controller }

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if err := d.cfg.StartWatching(d.ctx); err != nil {
		log.Warnf("Daemon: config hot reload disabled: %v", err)
	}
	defer d.cfg.Stop()
	defer d.controller.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Infof("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Info("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Info("Shutdown requested")
				return nil
			}
			log.Errorf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Warnf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}
	fmt.Fprint(c, d.reply(line[0]))
}

func (d *Daemon) reply(cmd byte) string {
	switch cmd {
	case bus.CmdToggle:
		status, err := d.controller.Toggle(d.ctx)
		if err != nil {
			return fmt.Sprintf("ERR %s\n", transcriber.Message(err))
		}
		return fmt.Sprintf("STATUS status=%s\n", status)
	case bus.CmdStop:
		if err := d.controller.Stop(); err != nil {
			return fmt.Sprintf("ERR %v\n", err)
		}
		return "OK stopped\n"
	case bus.CmdClear:
		d.controller.Clear()
		return "OK cleared\n"
	case bus.CmdStatus:
		return d.statusLine()
	case bus.CmdVersion:
		return fmt.Sprintf("STATUS proto=%s version=%s\n", bus.ProtoVer, Version)
	case bus.CmdTranscript:
		data, err := json.Marshal(d.controller.Transcript())
		if err != nil {
			return fmt.Sprintf("ERR %v\n", err)
		}
		return fmt.Sprintf("TRANSCRIPT %s\n", data)
	case bus.CmdQuit:
		d.cancel()
		return "OK quitting\n"
	default:
		log.Warnf("Unknown command: %c", cmd)
		return fmt.Sprintf("ERR unknown=%q\n", cmd)
	}
}

func (d *Daemon) statusLine() string {
	ctl := d.controller
	st := ctl.Classifier().State()
	line := fmt.Sprintf("STATUS status=%s speaker=%d segments=%d", ctl.Status(), st.CurrentSpeaker, len(ctl.Transcript()))
	if id := ctl.SessionID(); id != "" {
		line += " session=" + id
	}
	if err := ctl.LastError(); err != nil {
		line += " error=" + transcriber.Kind(err).String()
	}
	return line + "\n"
}
