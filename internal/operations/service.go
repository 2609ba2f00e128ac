package operations

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/validation"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/websocket"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	imageLocation string
	binary        string
	operations    map[string]*Operation
	activeOps     map[string]string
	mutex         sync.RWMutex
	logger        *logging.Logger
	hub           *websocket.Hub
}

func NewService(imageLocation, binary string, logger *logging.Logger, hub *websocket.Hub) *Service {
	logger.Debug("operations service initialized",
		zap.String("image_location", imageLocation),
		zap.String("binary", binary),
	)
	return &Service{
		imageLocation: imageLocation,
		binary:        binary,
		operations:    make(map[string]*Operation),
		activeOps:     make(map[string]string),
		logger:        logger,
		hub:           hub,
	}
}

// StartOperation registers a new invocation against the named archive and
// returns its ID. The subprocess only starts once a client opens the stream,
// so no output is produced without a reader attached.
func (s *Service) StartOperation(ctx context.Context, archiveName string, req OperationRequest) (string, error) {
	archivePath, err := validation.SanitizeArchivePath(s.imageLocation, archiveName)
	if err != nil {
		return "", fmt.Errorf("invalid archive name '%s': %w", archiveName, err)
	}

	if req.Command != "capture" {
		if _, err := os.Stat(archivePath); os.IsNotExist(err) {
			return "", fmt.Errorf("archive '%s' not found", archiveName)
		}
	}

	s.mutex.Lock()
	if existingOpID, exists := s.activeOps[archiveName]; exists {
		s.mutex.Unlock()
		s.logger.Warn("operation already running on archive",
			zap.String("archive", archiveName),
			zap.String("existing_operation_id", existingOpID),
		)
		return "", fmt.Errorf("another operation (%s) is already running on archive '%s'", existingOpID, archiveName)
	}

	operationID := uuid.New().String()
	operation := &Operation{
		ID:          operationID,
		Archive:     archiveName,
		Request:     req,
		StartTime:   time.Now(),
		Status:      "running",
		Broadcaster: NewBroadcaster(operationID),
	}

	s.operations[operationID] = operation
	s.activeOps[archiveName] = operationID
	s.mutex.Unlock()

	s.logger.Info("operation started",
		zap.String("operation_id", operationID),
		zap.String("archive", archiveName),
		zap.String("command", req.Command),
	)
	s.notifyStatus(operation, "running", nil)

	return operationID, nil
}

func (s *Service) GetOperation(operationID string) (*Operation, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	op, exists := s.operations[operationID]
	return op, exists
}

// StreamOperation attaches writer to the operation's output. The first
// streaming client triggers the actual subprocess; later clients replay the
// logged output and wait for completion.
func (s *Service) StreamOperation(ctx context.Context, operationID string, writer io.Writer) error {
	operation, exists := s.GetOperation(operationID)
	if !exists {
		return fmt.Errorf("operation not found")
	}

	subscriberID := fmt.Sprintf("sub-%d", time.Now().UnixNano())
	operation.Broadcaster.Subscribe(subscriberID, writer)
	defer operation.Broadcaster.Unsubscribe(subscriberID)

	if operation.Broadcaster.IsStarted() {
		return s.waitForCompletion(ctx, operation)
	}
	operation.Broadcaster.MarkStarted()

	defer s.unlockArchive(operation.Archive, operationID)

	archivePath, err := validation.SanitizeArchivePath(s.imageLocation, operation.Archive)
	if err != nil {
		operation.Broadcaster.BroadcastError(fmt.Sprintf("Invalid archive path: %v", err))
		s.updateOperationStatus(operationID, "failed", nil)
		return fmt.Errorf("invalid archive path: %w", err)
	}

	cmd := s.buildCommand(ctx, operation.Request, archivePath)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		operation.Broadcaster.BroadcastError(fmt.Sprintf("Failed to create stdout pipe: %v", err))
		s.updateOperationStatus(operationID, "failed", nil)
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		operation.Broadcaster.BroadcastError(fmt.Sprintf("Failed to create stderr pipe: %v", err))
		s.updateOperationStatus(operationID, "failed", nil)
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	s.logger.Debug("starting wimlib-imagex command",
		zap.String("operation_id", operationID),
		zap.String("archive", operation.Archive),
		zap.Strings("args", cmd.Args),
	)

	if err := cmd.Start(); err != nil {
		s.logger.Error("failed to start command",
			zap.String("operation_id", operationID),
			zap.Error(err),
		)
		operation.Broadcaster.BroadcastError(fmt.Sprintf("Failed to start command: %v", err))
		s.updateOperationStatus(operationID, "failed", nil)
		s.notifyStatus(operation, "failed", nil)
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.streamOutput(ctx, stdout, operation.Broadcaster, StreamTypeStdout)
	}()
	go func() {
		defer wg.Done()
		s.streamOutput(ctx, stderr, operation.Broadcaster, StreamTypeStderr)
	}()
	wg.Wait()

	duration := time.Since(operation.StartTime)
	if err := cmd.Wait(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode := exitError.ExitCode()
			s.logger.Warn("operation completed with non-zero exit code",
				zap.String("operation_id", operationID),
				zap.String("archive", operation.Archive),
				zap.Int("exit_code", exitCode),
				zap.Duration("duration", duration),
			)
			s.updateOperationStatus(operationID, "completed", &exitCode)
			operation.Broadcaster.BroadcastComplete(false, exitCode)
			s.notifyStatus(operation, "completed", &exitCode)
		} else {
			s.logger.Error("operation failed",
				zap.String("operation_id", operationID),
				zap.String("archive", operation.Archive),
				zap.Error(err),
				zap.Duration("duration", duration),
			)
			s.updateOperationStatus(operationID, "failed", nil)
			operation.Broadcaster.BroadcastError(fmt.Sprintf("Command execution error: %v", err))
			s.notifyStatus(operation, "failed", nil)
		}
	} else {
		exitCode := 0
		s.logger.Info("operation completed",
			zap.String("operation_id", operationID),
			zap.String("archive", operation.Archive),
			zap.String("command", operation.Request.Command),
			zap.Duration("duration", duration),
		)
		s.updateOperationStatus(operationID, "completed", &exitCode)
		operation.Broadcaster.BroadcastComplete(true, exitCode)
		s.notifyStatus(operation, "completed", &exitCode)
	}

	return nil
}

func (s *Service) waitForCompletion(ctx context.Context, operation *Operation) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			if operation.Broadcaster.IsCompleted() {
				return nil
			}
		}
	}
}

func (s *Service) streamOutput(ctx context.Context, reader io.Reader, broadcaster *Broadcaster, streamType StreamMessageType) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
			broadcaster.Broadcast(streamType, scanner.Text())
		}
	}
}

// buildCommand assembles the argument vector [command, positional..., flags]
// for one streamed invocation. Request contents were validated when the
// operation was registered.
func (s *Service) buildCommand(ctx context.Context, req OperationRequest, archivePath string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, s.binary, commandArgs(req, archivePath)...)
	cmd.Env = []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=/tmp",
	}
	return cmd
}

func commandArgs(req OperationRequest, archivePath string) []string {
	imageIndex := req.ImageIndex
	if imageIndex < 1 {
		imageIndex = 1
	}

	var args []string
	switch req.Command {
	case "capture":
		args = []string{"capture", req.Source, archivePath}
	case "extract":
		args = []string{"extract", archivePath, strconv.Itoa(imageIndex)}
		if req.Target != "" {
			args = append(args, req.Target)
		}
	case "verify":
		args = []string{"verify", archivePath}
	default:
		return nil
	}
	return append(args, req.Options...)
}

func (s *Service) notifyStatus(operation *Operation, status string, exitCode *int) {
	s.hub.BroadcastOperationStatus(websocket.OperationStatusEvent{
		OperationID: operation.ID,
		Archive:     operation.Archive,
		Command:     operation.Request.Command,
		Status:      status,
		ExitCode:    exitCode,
	})
}

func (s *Service) updateOperationStatus(operationID, status string, exitCode *int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if op, exists := s.operations[operationID]; exists {
		op.Status = status
		op.ExitCode = exitCode
	}
}

func (s *Service) unlockArchive(archiveName, operationID string) {
	s.mutex.Lock()
	if currentOpID, exists := s.activeOps[archiveName]; exists && currentOpID == operationID {
		delete(s.activeOps, archiveName)
	}
	s.mutex.Unlock()
}
