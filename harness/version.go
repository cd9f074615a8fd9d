package harness

const Version = "1.0.0"
