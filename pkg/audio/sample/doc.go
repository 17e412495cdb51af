// ABOUTME: Sample loading and device buffer lifecycle package
// ABOUTME: Provides Manager, SampleData, shared Refs and the path-keyed Bank
// Package sample loads audio files into device buffers and manages their
// lifetime.
//
// Manager.Load runs the full pipeline: context check, open, decode, format
// mapping, buffer allocation, upload, backend error check and tag
// extraction. The file is always closed, and a buffer allocated during a
// failed load is deleted before the error is returned.
//
// A loaded SampleData is immutable. Share it through a Ref; the device
// buffer is deleted exactly once, when the last Ref is released.
//
// Example:
//
//	m := sample.NewManager(device)
//	s, err := m.Load("kick.wav")
//	if err != nil {
//	    return err
//	}
//	ref := sample.Share(s)
//	defer ref.Release()
package sample
