package main

type FlagType int
type FlagMap map[FlagType]string

const (
	servicePort FlagType = iota
	configPath
	policyPath
)
