package domain

// DispatchResult is the outcome of one outbound operation.
type DispatchResult struct {
	OK      bool
	Payload any
	Failure error
}

func Succeeded(payload any) DispatchResult {
	return DispatchResult{OK: true, Payload: payload}
}

func Failed(err error) DispatchResult {
	return DispatchResult{Failure: err}
}
