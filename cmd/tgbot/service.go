package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/flemzord/tgbot/pkg/app"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

const serviceName = "tgbot"

// program adapts app.Run to the service manager's Start/Stop contract.
// Start must not block, so the bot runs in a goroutine until Stop.
type program struct {
	params app.RunParams

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go func() {
		err := app.Run(ctx, p.params)
		if err != nil && !errors.Is(err, context.Canceled) {
			if logger, lerr := s.Logger(nil); lerr == nil {
				_ = logger.Error(err)
			}
		}
		done <- err
	}()
	return nil
}

func (p *program) Stop(service.Service) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serviceConfig describes the installed unit. The config path is made
// absolute because service managers start from another directory.
func serviceConfig(flags *globalFlags) (*service.Config, error) {
	args := []string{"service", "run"}
	if flags.config != "" {
		abs, err := filepath.Abs(flags.config)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		args = append(args, "--config", abs)
	}
	if flags.envFile != "" {
		abs, err := filepath.Abs(flags.envFile)
		if err != nil {
			return nil, fmt.Errorf("resolving env file path: %w", err)
		}
		args = append(args, "--env-file", abs)
	}
	return &service.Config{
		Name:        serviceName,
		DisplayName: "tgbot",
		Description: "Telegram bot",
		Arguments:   args,
	}, nil
}

func newService(flags *globalFlags) (service.Service, error) {
	svcCfg, err := serviceConfig(flags)
	if err != nil {
		return nil, err
	}
	params, err := runParams(flags, "")
	if err != nil {
		return nil, err
	}
	s, err := service.New(&program{params: params}, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}
	return s, nil
}

func serviceCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Install or run tgbot as a system service",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run under the service manager",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := newService(flags)
			if err != nil {
				return err
			}
			return s.Run()
		},
	})

	for _, action := range []string{"install", "uninstall", "start", "stop", "restart"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("Service control: %s", action),
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := newService(flags)
				if err != nil {
					return err
				}
				if err := service.Control(s, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("Service"), action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newService(flags)
			if err != nil {
				return err
			}
			st, err := s.Status()
			if err != nil {
				return fmt.Errorf("service status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusText(st))
			return nil
		},
	})
	return cmd
}

func statusText(st service.Status) string {
	switch st {
	case service.StatusRunning:
		return color.GreenString("running")
	case service.StatusStopped:
		return color.YellowString("stopped")
	default:
		return color.RedString("unknown")
	}
}
