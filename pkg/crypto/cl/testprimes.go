// Copyright 2025 MRJCrunch

package cl

import "math/big"

// Project-standard 1024-bit safe-prime pairs. Tests that need issuer keys
// use these instead of paying safe-prime generation on every run.
var (
	TestPrimes1P, _ = new(big.Int).SetString("152279628660397891886669975076955655840570811216439707130648832585185713084466168472165182704536856986187167365461701220551382687863485362804301541087842645042361768569926585882783373413487997530710504519202883484322694958017782671754763514872942765755940514503330157577021729648844217154293698040351348183779", 10)
	TestPrimes1Q, _ = new(big.Int).SetString("144215069948680938868139952206447399375161372397806456433643830209956454975277740174827609885077289034028004782552742406377440525460429777035914928265657674075539220060128354811524021153380244079344063842480861281098110156675559474230579371255931394777336144512276478759819773943938276252739241803150696898303", 10)

	TestPrimes2P, _ = new(big.Int).SetString("155427494576977194087264303364121463028431659764206516773938081888897155450389509996800398416836553347854507037524874878969821981884252459521780098858071460372651931791620751291667578344174302453766939321269127533944367614159573190350205905724886225653671183444800608420433176488338019807107107861699647756523", 10)
	TestPrimes2Q, _ = new(big.Int).SetString("160355430337182848672552926260832922773150727193860589979972869015664518554670179864304238606215706203900754292401501966493439950685076158472184919600784781999052054133394244994882843668797000675266836455941981955826514313754576829587571149563889798587853436201872613057191285808480751846386676827133762009459", 10)
)
