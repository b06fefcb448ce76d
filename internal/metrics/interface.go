package metrics

import "time"

// Recorder define os pontos de medição usados pela API.
type Recorder interface {
	// RecordUploadAttempt conta cada ciclo consulta+escrita no armazenamento de anexos.
	RecordUploadAttempt(provider string)

	// RecordUploadConflict conta escritas rejeitadas por revisão desatualizada.
	RecordUploadConflict(provider string)

	// RecordUpload registra o desfecho final de um upload.
	RecordUpload(provider, outcome string, attempts int, duration time.Duration)

	// RecordRecordOperation registra uma operação no armazenamento de registros.
	RecordRecordOperation(backend, collection, operation string, success bool, duration time.Duration)

	// RecordHTTPRequest registra uma requisição atendida.
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Noop descarta todas as medições.
type Noop struct{}

func (Noop) RecordUploadAttempt(string)                                        {}
func (Noop) RecordUploadConflict(string)                                       {}
func (Noop) RecordUpload(string, string, int, time.Duration)                   {}
func (Noop) RecordRecordOperation(string, string, string, bool, time.Duration) {}
func (Noop) RecordHTTPRequest(string, string, int, time.Duration)              {}
