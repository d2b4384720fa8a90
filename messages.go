// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

// Message type constants, RFC 4253 and its extensions. The numbering
// follows the default packet handler table in the original SSH
// Library's packet.c: transport messages 1-7, kex 20-21 and 30-34,
// userauth 50-66, connection 80-100.
const (
	msgDisconnect    = 1
	msgIgnore        = 2
	msgUnimplemented = 3
	msgDebug         = 4

	msgServiceRequest = 5
	msgServiceAccept  = 6
	msgExtInfo        = 7

	msgKexInit = 20
	msgNewKeys = 21

	msgKexDHInit          = 30
	msgKexECDHInit        = 30
	msgKexDHReply         = 31
	msgKexECDHReply       = 31
	msgKexDHGexInit       = 32
	msgKexDHGexReply      = 33
	msgKexDHGexRequest    = 34

	msgUserAuthRequest = 50
	msgUserAuthFailure = 51
	msgUserAuthSuccess = 52
	msgUserAuthBanner  = 53

	msgUserAuthPKOK                     = 60
	msgUserAuthPasswdChangeReq          = 60
	msgUserAuthInfoRequest              = 60
	msgUserAuthGSSAPIResponse           = 60
	msgUserAuthInfoResponse             = 61
	msgUserAuthGSSAPIToken              = 61
	msgUserAuthGSSAPIExchangeComplete   = 63
	msgUserAuthGSSAPIError              = 64
	msgUserAuthGSSAPIErrtok             = 65
	msgUserAuthGSSAPIMIC                = 66

	msgGlobalRequest           = 80
	msgRequestSuccess          = 81
	msgRequestFailure          = 82
	msgChannelOpen             = 90
	msgChannelOpenConfirmation = 91
	msgChannelOpenFailure      = 92
	msgChannelWindowAdjust     = 93
	msgChannelData             = 94
	msgChannelExtendedData     = 95
	msgChannelEOF              = 96
	msgChannelClose            = 97
	msgChannelRequest          = 98
	msgChannelSuccess          = 99
	msgChannelFailure          = 100
)

// messageNames maps a handful of well known message types to a short
// name, used only for logging.
var messageNames = map[byte]string{
	msgDisconnect:      "DISCONNECT",
	msgIgnore:          "IGNORE",
	msgUnimplemented:   "UNIMPLEMENTED",
	msgDebug:           "DEBUG",
	msgServiceRequest:  "SERVICE_REQUEST",
	msgServiceAccept:   "SERVICE_ACCEPT",
	msgExtInfo:         "EXT_INFO",
	msgKexInit:         "KEXINIT",
	msgNewKeys:         "NEWKEYS",
	msgKexDHInit:       "KEXDH_INIT",
	msgKexDHReply:      "KEXDH_REPLY",
	msgUserAuthRequest: "USERAUTH_REQUEST",
	msgUserAuthFailure: "USERAUTH_FAILURE",
	msgUserAuthSuccess: "USERAUTH_SUCCESS",
	msgUserAuthBanner:  "USERAUTH_BANNER",
	msgGlobalRequest:   "GLOBAL_REQUEST",
	msgRequestSuccess:  "REQUEST_SUCCESS",
	msgRequestFailure:  "REQUEST_FAILURE",
	msgChannelOpen:     "CHANNEL_OPEN",
	msgChannelData:     "CHANNEL_DATA",
	msgChannelClose:    "CHANNEL_CLOSE",
	msgChannelRequest:  "CHANNEL_REQUEST",
}

func messageName(t byte) string {
	if name, ok := messageNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}
