package authflow

import "fmt"

// ProviderError wraps a failure reported by the identity provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ProfileStoreError wraps a failure reading or writing the profile document.
type ProfileStoreError struct {
	Op  string
	Err error
}

func (e *ProfileStoreError) Error() string {
	return fmt.Sprintf("profile store %s: %v", e.Op, e.Err)
}

func (e *ProfileStoreError) Unwrap() error {
	return e.Err
}
