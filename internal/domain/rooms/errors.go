package rooms

import "errors"

// Sentinel kinds for room errors.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrDuplicateJudge    = errors.New("judge name already exists")
	ErrUnknownJudge      = errors.New("judge not registered in room")
	ErrInvalidJudgeName  = errors.New("invalid judge name")
	ErrUnknownContestant = errors.New("unknown contestant")
	ErrUnknownRound      = errors.New("unknown round")
	ErrUnknownCriterion  = errors.New("unknown criterion")
	ErrNoFreeCode        = errors.New("no free room code")
)
