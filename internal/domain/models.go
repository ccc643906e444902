package domain

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Church{},
		&User{},
		&Member{},
		&LeavingCertificate{},
		&CertificateCounter{},
		&CertificateEvent{},
		&LeaveRequest{},
	}
}
