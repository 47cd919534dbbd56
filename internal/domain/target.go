package domain

import "strings"

// TargetKind различает публичный канал и приватный инвайт.
type TargetKind string

const (
	KindPublic        TargetKind = "public"
	KindPrivateInvite TargetKind = "private_invite"
)

// JoinTarget: нормализованная ссылка на группу/канал.
type JoinTarget struct {
	RawLink    string     `json:"link"`
	Kind       TargetKind `json:"kind"`
	Identifier string     `json:"identifier"` // username или invite hash
}

// Classify определяет тип ссылки по последнему сегменту пути.
// Сеть не трогает и никогда не падает: мусор на входе отвалится позже на gateway.
func Classify(rawLink string) JoinTarget {
	segment := rawLink
	if i := strings.LastIndex(rawLink, "/"); i >= 0 {
		segment = rawLink[i+1:]
	}

	if strings.Contains(rawLink, "joinchat") || strings.HasPrefix(segment, "+") {
		hash := strings.TrimLeft(segment, "+")
		hash = strings.TrimPrefix(hash, "joinchat/")
		return JoinTarget{RawLink: rawLink, Kind: KindPrivateInvite, Identifier: hash}
	}

	return JoinTarget{RawLink: rawLink, Kind: KindPublic, Identifier: segment}
}

// ClassifyAll сохраняет порядок входных ссылок.
func ClassifyAll(links []string) []JoinTarget {
	out := make([]JoinTarget, 0, len(links))
	for _, l := range links {
		out = append(out, Classify(l))
	}
	return out
}
